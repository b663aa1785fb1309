// main.go - CLI that cats a file through vm.Reader
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Command vmemcat is a thin, trivial CLI around package vm's file-mapping
// primitives: it maps a file read-only and writes its contents to stdout in
// vm.Reader-sized chunks. It exists to exercise the library end to end, not
// as a feature of the core.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"

	"github.com/opencoff/vmem/vm"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: vmemcat <file>")
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("open: %s", err)
	}
	defer f.Close()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if _, err := vm.Reader(f, func(buf []byte) error {
		_, werr := out.Write(buf)
		return werr
	}); err != nil {
		log.Fatalf("vmemcat: %s", err)
	}
}
