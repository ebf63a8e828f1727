// Command milc compiles a mil covenant to stack-machine bytecode and
// optionally runs it against transaction fixtures.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/themeliolabs/mil/expand"
	"github.com/themeliolabs/mil/lower"
	"github.com/themeliolabs/mil/parser"
	"github.com/themeliolabs/mil/vm"
)

const help = `Usage: milc [flags] <input.mil>

Command milc compiles a mil covenant to bytecode and writes it to the
output file.

With -tx, the compiled program is also executed once per transaction in
the fixture file, a JSON array of {"sighash": "<hex>"} objects, and the
verdict of each run is reported.

Exit code 0 indicates success (and, with -tx, that every transaction
was authorized).
Exit code 1 indicates a compilation fault or an unauthorized
transaction.
Exit code 2 indicates a usage or I/O error.

Flags:
`

var (
	flagO     = flag.String("o", "script.mvm", "write the compiled program to `file`")
	flagV     = flag.Bool("v", false, "dump every compilation stage to stderr")
	flagTx    = flag.String("tx", "", "run the program against the transactions in `file`")
	flagTrace = flag.Bool("trace", false, "print an execution trace to stderr")
	flagRepl  = flag.Bool("repl", false, "start an interactive session instead of compiling a file")
)

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, help)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *flagTrace {
		vm.TraceOut = os.Stderr
	}
	if *flagRepl {
		repl()
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	src, err := ioutil.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	prog := compile(src)
	err = ioutil.WriteFile(*flagO, prog, 0644)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Printf("wrote %d bytes to %s\n", len(prog), *flagO)

	if *flagTx != "" {
		runFixtures(prog, *flagTx)
	}
}

func compile(src []byte) []byte {
	defs, body, err := parser.Parse(src)
	if err != nil {
		fatalf("parse: %s", err)
	}
	dump("ast", body)

	env, err := expand.NewEnv(defs)
	if err != nil {
		fatalf("expand: %s", err)
	}
	unrolled, err := env.Expand(body)
	if err != nil {
		fatalf("expand: %s", err)
	}
	dump("expanded", unrolled)

	lowered, err := lower.NewMemoryMap().Lower(unrolled)
	if err != nil {
		fatalf("lower: %s", err)
	}
	dump("lowered", lowered)

	prog, err := lower.Encode(lowered)
	if err != nil {
		fatalf("encode: %s", err)
	}
	if *flagV {
		s, err := vm.Disassemble(prog)
		if err != nil {
			fatalf("disassemble: %s", err)
		}
		fmt.Fprintf(os.Stderr, "asm: %s\n", s)
	}
	return prog
}

func dump(stage string, obj interface{}) {
	if *flagV {
		fmt.Fprintf(os.Stderr, "%s:\n%s", stage, spew.Sdump(obj))
	}
}

type txFixture struct {
	SigHash string `json:"sighash"`
}

func runFixtures(prog []byte, path string) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	var txs []txFixture
	err = json.Unmarshal(data, &txs)
	if err != nil {
		fatalf("bad fixture file: %s", err)
	}

	contexts := make([]*vm.Context, 0, len(txs))
	for i, tx := range txs {
		sighash, err := hex.DecodeString(tx.SigHash)
		if err != nil {
			fatalf("tx %d: bad sighash: %s", i, err)
		}
		contexts = append(contexts, vm.NewContext(prog, sighash))
	}

	results, err := vm.VerifyBatch(prog, contexts)
	if err != nil {
		fatalf("%s", err)
	}
	code := 0
	for i, r := range results {
		switch {
		case r.Err != nil:
			fmt.Printf("tx %d: fault: %s\n", i, r.Err)
			code = 1
		case r.Authorized:
			fmt.Printf("tx %d: authorized\n", i)
		default:
			fmt.Printf("tx %d: rejected\n", i)
			code = 1
		}
	}
	os.Exit(code)
}
