// Package inspect renders script values as deterministic, human-readable text.
//
// The output format follows the classic console inspector: primitives print as
// literals, aggregates print as braces with "name: value" pairs, sequences as
// brackets, and a handful of special kinds carry an annotation:
//
//	inspect.Inspect(inspect.NewObject().Set("a", inspect.Number(1)))
//	// { a: 1 }
//
//	inspect.Inspect(inspect.NewFunction("onSave"))
//	// [Function: onSave]
//
// # Values
//
// Value is a closed set of variants. Primitives are Undefined, Null, Bool,
// Number, String and *Symbol. Composites are *Object, *Array, *Function,
// *RegExp, *Date, *Error and *Boxed; all of them embed Properties, an
// insertion-ordered property table whose entries are either plain values or
// accessors. Accessors are shown as [Getter], [Setter] or [Getter/Setter] and
// are never called.
//
// # Depth and cycles
//
// Rendering descends at most three levels by default. Deeper aggregates print
// as [Object]. WithDepth changes the limit and WithUnlimitedDepth removes it.
// A composite that is already being rendered further up the current path
// prints as [Circular], so cyclic graphs always terminate.
//
// # Layout
//
// Children are joined on a single line while their combined width stays at or
// below 60 columns; beyond that each child goes on its own line.
package inspect
