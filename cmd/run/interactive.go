package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/runtime"
)

const (
	kRESET = "\033[0m"
	kRED   = "\033[91m"
)

type evalFunc func(src, origin string) (*engine.Value, error)

func repl(ctx *runtime.Context, eval evalFunc, asJSON bool) error {
	s := liner.NewLiner()
	s.SetMultiLineMode(true)
	defer s.Close()

	for {
		src, err := s.Prompt("> ")
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		s.AppendHistory(src)

		v, err := eval(src, "<input>")
		if err != nil {
			fmt.Println(kRED + fmt.Sprintf("%+v", err) + kRESET)
			continue
		}
		out, err := render(ctx, v, asJSON)
		if err != nil {
			fmt.Println(kRED + fmt.Sprintf("%+v", err) + kRESET)
			continue
		}
		fmt.Println(out)
	}
}
