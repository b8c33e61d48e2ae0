package gotoyaml

// Schema is a JSON Schema (draft 2020-12) for the top-level shape of a
// goto-program document (ir.Program has no wire format of its own; this
// is gotoyaml's own, shared by cmd/symexec and cmd/dumpir). It only pins
// down the document's outer skeleton — entry, functions, instructions
// each carrying a "kind" — and leaves each instruction's per-kind field
// shape to BuildProgram's own error messages, which name the offending
// field directly. A fully exhaustive per-kind schema would duplicate
// that switch statement in JSON Schema form for no practical gain: a
// malformed instruction still fails fast, just one layer later, with a
// message naming exactly what it expected.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://gotosym.example/schema/goto-program.json",
  "type": "object",
  "required": ["entry", "functions"],
  "properties": {
    "entry": {"type": "string", "minLength": 1},
    "functions": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "required": ["instructions"],
        "properties": {
          "params": {"type": "array"},
          "instructions": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["kind"],
              "properties": {
                "kind": {
                  "type": "string",
                  "enum": [
                    "skip", "decl", "assign", "function_call", "function_return",
                    "goto", "assume", "assert", "atomic_begin", "atomic_end",
                    "throw", "catch", "end_function"
                  ]
                }
              }
            }
          }
        }
      }
    }
  }
}`
