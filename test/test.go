package test

import (
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func ConfigLogging() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

type CallWatcher struct {
	functionCalls map[string][][]interface{}
}

func NewCallWatcher() *CallWatcher {
	return &CallWatcher{functionCalls: make(map[string][][]interface{})}
}

func (w *CallWatcher) GetCall(funcName string) [][]interface{} {
	for name, calls := range w.functionCalls {
		if matches(name, funcName) {
			return calls
		}
	}
	return nil
}

func (w *CallWatcher) GetCallCount(funcName string) int {
	return len(w.GetCall(funcName))
}

func (w *CallWatcher) AddCall(args ...interface{}) {
	pc := make([]uintptr, 15)
	n := runtime.Callers(2, pc)
	frames := runtime.CallersFrames(pc[:n])
	frame, _ := frames.Next()
	funcName := frame.Func.Name()

	calls := w.functionCalls[funcName]
	w.functionCalls[funcName] = append(calls, args)
}

func (w *CallWatcher) VerifyCount(funcName string, want int, t *testing.T) {
	t.Helper()
	got := w.GetCallCount(funcName)
	if got != want {
		t.Errorf("unexpected call count for %s got=%d want=%d", funcName, got, want)
	}
}

// matches compares a short method name against the qualified name recorded by
// runtime.Callers, e.g. pkg/db/stockrepo.(*MockRepo).SaveProduct.
func matches(qualified, funcName string) bool {
	idx := strings.LastIndex(qualified, ".")
	if idx < 0 {
		return qualified == funcName
	}
	return qualified[idx+1:] == funcName
}
