package uci

import (
	"errors"
	"fmt"
	"strconv"
)

// Option is a single UCI-negotiated setting: something the GUI can
// list with "uci" and change with "setoption name ... value ...".
type Option interface {
	UciName() string
	UciString() string
	Set(s string) error
}

// BoolOption backs a UCI "check" option.
type BoolOption struct {
	Name  string
	Value *bool
}

func (opt *BoolOption) UciName() string { return opt.Name }

func (opt *BoolOption) UciString() string {
	return fmt.Sprintf("option name %v type check default %v", opt.Name, *opt.Value)
}

func (opt *BoolOption) Set(s string) error {
	var v, err = strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*opt.Value = v
	return nil
}

// IntOption backs a UCI "spin" option.
type IntOption struct {
	Name  string
	Min   int
	Max   int
	Value *int
}

func (opt *IntOption) UciName() string { return opt.Name }

func (opt *IntOption) UciString() string {
	return fmt.Sprintf("option name %v type spin default %v min %v max %v",
		opt.Name, *opt.Value, opt.Min, opt.Max)
}

func (opt *IntOption) Set(s string) error {
	var v, err = strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v < opt.Min || v > opt.Max {
		return errors.New("argument out of range")
	}
	*opt.Value = v
	return nil
}

// StringOption backs a UCI "string" option, used for BookFile.
type StringOption struct {
	Name  string
	Value *string
}

func (opt *StringOption) UciName() string { return opt.Name }

func (opt *StringOption) UciString() string {
	var def = *opt.Value
	if def == "" {
		def = "<empty>"
	}
	return fmt.Sprintf("option name %v type string default %v", opt.Name, def)
}

func (opt *StringOption) Set(s string) error {
	if s == "<empty>" {
		s = ""
	}
	*opt.Value = s
	return nil
}

// ButtonOption backs a UCI "button" option: no value travels with it,
// only an action to run once, e.g. "setoption name Clear Hash".
type ButtonOption struct {
	Name   string
	Action func()
}

func (opt *ButtonOption) UciName() string { return opt.Name }

func (opt *ButtonOption) UciString() string {
	return fmt.Sprintf("option name %v type button", opt.Name)
}

func (opt *ButtonOption) Set(s string) error {
	opt.Action()
	return nil
}
