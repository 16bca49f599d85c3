// Package plandef читает планы из YAML.
//
// Включает:
//   - definition.go — Definition, Node, Parse, Load
//   - build.go      — валидация и сборка pipeline.Plan
//   - template.go   — Go templates в cmd, label и with ({{ .Inputs.x }})
//   - errors.go     — sentinel ошибки и ValidationError
//
// Каждый узел — mapping ровно с одним ключом вида:
// stage (+ do), cmd, action (+ with, label), parallel, sequential,
// recover (try + fallback).
package plandef
