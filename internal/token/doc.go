// Package token defines lexical token kinds and trivia for the nesC frontend.
// Invariants:
//   - Token.Text is a slice of the file content (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Preprocessor lines (#include, #define, ...) are leading Trivia
//     (TriviaDirective) and never appear in the main token stream.
//   - C type keywords (int, char, unsigned, ...) are keywords; typedef
//     names such as uint8_t or error_t are identifiers recognized by the
//     parser and the semantic layer.
package token
