package emit

import (
	"encoding/json"

	"gqlbundle/internal/textutil"
)

type tsconfig struct {
	Include         []string        `json:"include"`
	CompilerOptions compilerOptions `json:"compilerOptions"`
}

type compilerOptions struct {
	Target                           string `json:"target"`
	Module                           string `json:"module"`
	ModuleResolution                 string `json:"moduleResolution"`
	Declaration                      bool   `json:"declaration"`
	DeclarationMap                   bool   `json:"declarationMap"`
	SourceMap                        bool   `json:"sourceMap"`
	Composite                        bool   `json:"composite"`
	Strict                           bool   `json:"strict"`
	EsModuleInterop                  bool   `json:"esModuleInterop"`
	ForceConsistentCasingInFileNames bool   `json:"forceConsistentCasingInFileNames"`
	NoImplicitReturns                bool   `json:"noImplicitReturns"`
	NoImplicitThis                   bool   `json:"noImplicitThis"`
	NoImplicitAny                    bool   `json:"noImplicitAny"`
	StrictNullChecks                 bool   `json:"strictNullChecks"`
	NoUnusedLocals                   bool   `json:"noUnusedLocals"`
	NoUnusedParameters               bool   `json:"noUnusedParameters"`
	RootDir                          string `json:"rootDir"`
	OutDir                           string `json:"outDir"`
}

// TSConfig renders the compiler project. outDir is relative to the project
// directory.
func TSConfig(outDir string) []byte {
	cfg := tsconfig{
		Include: []string{"./*.ts"},
		CompilerOptions: compilerOptions{
			Target:                           "es2017",
			Module:                           "commonjs",
			ModuleResolution:                 "node",
			Declaration:                      true,
			DeclarationMap:                   true,
			SourceMap:                        true,
			Composite:                        true,
			Strict:                           true,
			EsModuleInterop:                  true,
			ForceConsistentCasingInFileNames: true,
			NoImplicitReturns:                true,
			NoImplicitThis:                   true,
			NoImplicitAny:                    true,
			StrictNullChecks:                 true,
			NoUnusedLocals:                   true,
			NoUnusedParameters:               true,
			RootDir:                          ".",
			OutDir:                           outDir,
		},
	}
	b, _ := json.MarshalIndent(cfg, "", "  ")
	return textutil.EnsureTrailingLF(b)
}
