// Package validator validates request structs with go-playground/validator
// and reports failures as a field to message map keyed in snake_case.
package validator
