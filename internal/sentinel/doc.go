// Package sentinel provides Error, a string type for declaring sentinel
// errors as constants.
//
// A const cannot be reassigned by importers, which an errors.New variable
// can. Error values compare by string value, so errors.Is matches them
// through wrapped chains.
package sentinel
