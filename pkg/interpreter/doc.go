// Package interpreter executes DadaLang program trees produced by the parser.
// Output and input cross the host boundary through EmitFunc and InputFunc;
// Session wraps a run on its own goroutine for hosts that answer prompts
// asynchronously.
package interpreter
