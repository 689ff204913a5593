// Package dice interprets spoken tabletop dice formulas such as "3d8 + 1".
//
// A request passes through three stages: Normalize strips recognizer noise,
// Tokenize turns the cleaned string into Dice/Number/Operator tokens, and
// Evaluate walks the tokens with a recursive-descent evaluator that produces a
// single Result (bounds, average, one random sample and canonical text).
package dice
