// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLog directs the global logger to w in the human readable form.
func SetupLog(w io.Writer) {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	})
}

// SetLogLevel sets the global log level by name.
func SetLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info", "":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "disabled", "none", "off":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		return fmt.Errorf("invalid log level %q: must be one of: debug, info, warn, error, disabled", level)
	}
	return nil
}

// Warn logs a formatted warning.
func Warn(f string, args ...any) {
	log.Warn().Msgf(f, args...)
}

func Fatal(f string, args ...any) {
	log.Error().Msgf(f, args...)
	os.Exit(1)
}

// FatalErr logs the error and exits the program if the err != nil.
func FatalErr(what string, err error) {
	if err == nil {
		return
	}
	if what != "" {
		log.Error().Msgf("%s: %v", what, err)
	} else {
		log.Error().Msg(err.Error())
	}
	os.Exit(1)
}

// DirName returns the last element of the path to the current working
// directory.
func DirName() string {
	dir, err := os.Getwd()
	FatalErr("", err)
	dir = filepath.Base(dir)
	if dir == "/" || dir == "." {
		dir = ""
	}
	return dir
}

// ModuleName returns the last element of the module path declared in the
// go.mod file in the current directory or an empty string.
func ModuleName() string {
	data, err := os.ReadFile("go.mod")
	if err != nil {
		return ""
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fs := strings.Fields(sc.Text())
		if len(fs) >= 2 && fs[0] == "module" {
			mod, err := strconv.Unquote(fs[1])
			if err != nil {
				mod = fs[1]
			}
			return path.Base(mod)
		}
	}
	return ""
}

// InOutFiles infers the names of the input and output files. An empty
// inName is derived from the module or directory name. An empty outName is
// inName with its extension replaced by outSuffix, or with outSuffix
// appended if inName already ends with it.
func InOutFiles(inName, inSuffix, outName, outSuffix string) (string, string) {
	if inName == "" {
		inName = ModuleName()
		if inName == "" {
			inName = DirName()
		}
		inName += inSuffix
	}
	if outName == "" {
		ext := filepath.Ext(inName)
		if strings.EqualFold(ext, outSuffix) {
			outName = inName + outSuffix
		} else {
			outName = strings.TrimSuffix(inName, ext) + outSuffix
		}
	}
	return inName, outName
}

const (
	ptodo = "                         ] "
	pdone = " [========================="
)

// Progress draws a progress bar on a terminal line.
type Progress struct {
	W     io.Writer
	Pre   string
	Post string
	buf  []byte
}

// ProgressFunc returns the Update method of a new progress bar drawn on w
// or nil if quiet is set.
func ProgressFunc(w io.Writer, pre, post string, quiet bool) func(cur, total int) {
	if quiet {
		return nil
	}
	return (&Progress{W: w, Pre: pre, Post: post}).Update
}

// Update redraws the bar. The line is terminated when cur == total.
func (p *Progress) Update(cur, total int) {
	if total <= 0 {
		return
	}
	done := 25 * min(cur, total) / total
	b := append(p.buf[:0], '\r')
	b = append(b, p.Pre...)
	b = append(b, pdone[:2+done]...)
	b = append(b, ptodo[done:]...)
	b = strconv.AppendInt(b, int64(cur), 10)
	b = append(b, ' ')
	b = append(b, p.Post...)
	if cur == total {
		b = append(b, '\n')
	}
	p.W.Write(b)
	p.buf = b
}
