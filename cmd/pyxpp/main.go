// Command pyxpp transpiles pyx source into plain Python, optionally writing
// it to a file, copying it to the clipboard, or running it in place with
// errors remapped back to the original source (§6).
package main

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pyxlang/pyxpp/pkg/clipboard"
	"github.com/pyxlang/pyxpp/pkg/pyx"
	"github.com/pyxlang/pyxpp/pkg/runner"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	runFlag        bool
	copyFlag       bool
	outFlag        string
	noHeaderFlag   bool
	noOriginalFlag bool
	commentStyle   string
	headerB64Flag  string
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pyxpp [file]",
		Short: "pyxpp transpiles pyx-dialect source into plain Python",
		Long: `pyxpp expands $expand/$namespace/$using directives and !macro/!method/
!define declarations in a pyx source file into plain Python, then
optionally saves, copies, or runs the result.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doTranspile(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVarP(&runFlag, "run", "r", false, "Execute the transpiled code")
	rootCmd.Flags().BoolVarP(&copyFlag, "copy", "c", false, "Copy the transpiled code to the clipboard")
	rootCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Write the transpiled code to this file")
	rootCmd.Flags().BoolVar(&noHeaderFlag, "no-header", false, "Omit the generated-code disclosure header")
	rootCmd.Flags().BoolVar(&noOriginalFlag, "no-original", false, "Omit the original-source comment block")
	rootCmd.Flags().StringVar(&commentStyle, "comment-style", "'''", "Delimiter wrapping the header/original-source blocks")
	rootCmd.Flags().StringVar(&headerB64Flag, "header-b64", "", "Base64-encoded override for the disclosure header")

	return rootCmd
}

func doTranspile(filename string, out, errOut io.Writer) error {
	if _, err := os.Stat(filename); err != nil {
		fmt.Fprintf(errOut, "pyxpp: file not found: %s\n", filename)
		return err
	}

	baseOpts := pyx.AssembleOptions{
		NoHeader:     noHeaderFlag,
		NoOriginal:   noOriginalFlag,
		CommentStyle: commentStyle,
		HeaderB64:    headerB64Flag,
		SourceFile:   filename,
		Warn: func(msg string) {
			fmt.Fprintf(errOut, "pyxpp: warning: %s\n", msg)
		},
	}

	var codeExport string
	if outFlag != "" || copyFlag {
		export, _, err := pyx.Assemble(filename, baseOpts)
		if err != nil {
			fmt.Fprintf(errOut, "pyxpp: transpile error: %v\n", err)
		} else {
			codeExport = export
			if outFlag != "" {
				if err := writeWithBOM(outFlag, codeExport); err != nil {
					fmt.Fprintf(errOut, "pyxpp: error writing %s: %v\n", outFlag, err)
					return err
				}
				fmt.Fprintf(out, "Saved to %s\n", outFlag)
			}
			if copyFlag && !runFlag {
				copyToClipboard(codeExport, out)
			}
		}
	}

	if runFlag {
		fmt.Fprintln(out, ">> Executing...")
		fmt.Fprintln(out, "--------------------")

		execOpts := baseOpts
		execOpts.Exec = true
		codeExec, sourceMap, err := pyx.Assemble(filename, execOpts)
		if err != nil {
			fmt.Fprintf(errOut, "pyxpp: transpile error: %v\n", err)
			return err
		}

		workDir, err := runner.ResolveWorkDir(filename)
		if err != nil {
			return err
		}
		if runErr := runner.Run(codeExec, sourceMap, workDir, out, errOut); runErr != nil {
			fmt.Fprintf(errOut, "pyxpp: %v\n", runErr)
		}

		if copyFlag && codeExport != "" {
			fmt.Fprintln(out, "--------------------")
			copyToClipboard(codeExport, out)
		}
	}

	return nil
}

func copyToClipboard(code string, out io.Writer) {
	if err := clipboard.Copy(code); err != nil {
		fmt.Fprintf(out, ">> Copy failed: %v\n", err)
		return
	}
	fmt.Fprintln(out, ">> Code copied to clipboard.")
}

// writeWithBOM writes text to path prefixed with a UTF-8 BOM, matching the
// original's "utf-8-sig" output encoding (§6).
func writeWithBOM(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("transpiled output is not valid UTF-8")
	}
	_, err = f.WriteString(text)
	return err
}
