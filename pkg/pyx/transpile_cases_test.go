package pyx

import (
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type transpileCase struct {
	Name  string `yaml:"name"`
	Input string `yaml:"input"`
	Want  string `yaml:"want"`
}

type transpileCaseFile struct {
	Cases []transpileCase `yaml:"cases"`
}

func TestTranspileCasesFromFixture(t *testing.T) {
	raw, err := os.ReadFile("testdata/transpile_cases.yaml")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	var file transpileCaseFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	if len(file.Cases) == 0 {
		t.Fatal("fixture defined no cases")
	}

	for _, tc := range file.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			got := transpileString(t, tc.Input, false)
			want := tc.Want
			if !strings.HasSuffix(got, "\n") {
				got += "\n"
			}
			if got != want {
				t.Errorf("input:\n%s\ngot:\n%s\nwant:\n%s", tc.Input, got, want)
			}
		})
	}
}
