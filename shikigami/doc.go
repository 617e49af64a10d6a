// Package shikigami implements a small prefix-notation expression language
// with exact rational arithmetic. Every operator precedes its operands, so a
// program needs no parentheses for grouping:
//   - Arithmetic and comparison via `+ A B`, `- A B`, `* A B`, `/ A B`,
//     `> A B`, `>= A B` and `== A B`; operands nest freely (`+ * 2 3 4`).
//   - Numbers are exact fractions. A literal written as `N/D` and every
//     quotient keep their written form (`/ 4 2` renders `4/2`), and so does
//     a product with such an operand; sums and differences are reduced.
//   - Strings in single or double quotes; `+` concatenates when either
//     operand is a string.
//   - Variables via `= NAME EXPR` and functions via `= NAME (A, B) EXPR`.
//     Names are upper case. Functions are called as `NAME(ARGS)` or, once
//     defined by an earlier statement, in bare prefix form `NAME ARG ARG`.
//
// Statements are separated by whitespace or `;`, and a `#` starts a comment
// that runs to the end of the line. Execute returns the display text of the
// last statement, or a message starting with "Error: ".
package shikigami
