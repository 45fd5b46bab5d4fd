package pyx

// DefaultHeader is the notice prepended to generated output unless
// suppressed or overridden (§4.10, §6): it discloses that the file was
// produced by a transform rather than written or reviewed by a model.
const DefaultHeader = `このプログラムは特定のアルゴリズムにより変換されたもので、AIは一切関与していません。
This program was transformed by a specific algorithm, and no AI was involved in the process.

github:
https://github.com/pyxlang/pyxpp`

// GeneratedFilename is the synthetic filename exec mode compiles the
// assembled source under, so a Python traceback frame can be recognized as
// belonging to generated code and remapped via the SourceMap (§4.10).
const GeneratedFilename = "generated_pyx.py"
