package main

import (
	"fmt"
	"os"

	"github.com/peterh/liner"

	"github.com/themeliolabs/mil"
	"github.com/themeliolabs/mil/vm"
)

// repl compiles and runs one covenant per line against an all-zero
// transaction sighash, printing the final stack top first.
func repl() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	sighash := make([]byte, 32)
	for {
		src, err := line.Prompt("mil> ")
		if err != nil {
			fmt.Fprintln(os.Stderr)
			return
		}
		if src == "" {
			continue
		}
		line.AppendHistory(src)

		prog, err := mil.Compile([]byte(src))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		insts, err := vm.ParseProgram(prog)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		final, err := vm.Execute(insts, vm.NewContext(prog, sighash))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if len(final) == 0 {
			fmt.Println("(empty stack)")
			continue
		}
		for i := len(final) - 1; i >= 0; i-- {
			fmt.Println(final[i])
		}
	}
}
