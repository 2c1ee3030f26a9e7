package main

import (
	"errors"
	"fmt"
	"github.com/jessevdk/go-flags"
	"github.com/viant/simon/cli"
	"log"
	"os"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Println(flagsErr.Message)
			return
		}
		log.Fatal(err)
	}
}
