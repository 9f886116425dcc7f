package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Decode bool
	Table  bool
	Unwrap bool
	Batch  bool
	Query  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Decode = boolEnv("INF_DEBUG_DECODE")
	d.Table = boolEnv("INF_DEBUG_TABLE")
	d.Unwrap = boolEnv("INF_DEBUG_UNWRAP")
	d.Batch = boolEnv("INF_DEBUG_BATCH")
	d.Query = boolEnv("INF_DEBUG_QUERY")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Decode() bool {
	return d.Decode
}
func Table() bool {
	return d.Table
}
func Unwrap() bool {
	return d.Unwrap
}
func Batch() bool {
	return d.Batch
}
func Query() bool {
	return d.Query
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
	os.Stderr.Write([]byte{'\n'})
}
