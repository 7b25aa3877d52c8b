// Package compiler turns script source into an executable program.
//
// Source is parsed with gopher-lua's parser and compiled to a function
// prototype. The bytecode listing of that prototype is the transformed
// output shown next to the source:
//
//	prog, err := compiler.Compile("repl", src, compiler.Options{Listing: true})
//	if err != nil {
//	    var syntaxErr *compiler.SyntaxError
//	    if errors.As(err, &syntaxErr) {
//	        fmt.Println(syntaxErr.Line, syntaxErr.Message)
//	    }
//	    return err
//	}
//	fmt.Println(prog.Listing)
package compiler
