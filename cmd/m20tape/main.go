// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/m20/io"
	"github.com/ezrec/m20/word"
)

// dump writes the zones of a tape file as text.
func dump(out *bufio.Writer, file io.File, name string, verbose bool) (err error) {
	fmt.Fprintf(out, "File: %s\n\n", name)
	if verbose {
		fmt.Fprintf(out, "Dump mtape storage contents.\n")
	}

	total := 0
	for zone, zerr := range io.Zones(file) {
		if zerr != nil {
			err = fmt.Errorf("word %d: %w", total, zerr)
			break
		}

		fmt.Fprintf(out, "****** ZONE %d, LEN = %d\n", zone.Number, len(zone.Data))
		for _, value := range zone.Data {
			fmt.Fprintf(out, "%015o\n", uint64(value))
		}
		fmt.Fprintf(out, "*** CHKSUM: %015o", uint64(zone.Checksum))
		if sum := word.Sum(zone.Data); sum != zone.Checksum {
			fmt.Fprintf(out, " (computed %015o)", uint64(sum))
		}
		fmt.Fprintf(out, "\n\n")

		total += zone.Codes()
	}

	if verbose {
		fmt.Fprintf(out, "%d words read\n", total)
	}

	ferr := out.Flush()
	if err == nil {
		err = ferr
	}

	return
}

func main() {
	var input string
	var verbose bool

	flag.StringVar(&input, "i", "", "Magnetic tape file to dump")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(input) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	inf, err := os.Open(input)
	if err != nil {
		log.Fatalf("%v: %v", input, err)
	}
	defer inf.Close()

	err = dump(bufio.NewWriter(os.Stdout), inf, input, verbose)
	if err != nil {
		log.Fatalf("%v: %v", input, err)
	}
}
