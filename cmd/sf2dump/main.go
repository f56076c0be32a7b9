// Command sf2dump loads an SF2/SF3 file and prints its bank name followed by
// one line per preset (bank, program, name, zone count). Instruments and
// samples are not listed. It does not play audio - voice
// synthesis is out of scope for this module, spec.md §1.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/wavetable-go/sf2"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <file.sf2>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := dump(flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

func dump(path string) error {
	font, err := sf2.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer font.Close()

	fmt.Printf("%s\n", font.Name())

	it := font.IterPresets()
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		fmt.Printf("  preset % 3d:% 3d %-20s  %d zone(s)\n", p.Bank, p.Program, p.Name, len(p.Zones))
	}

	return nil
}
