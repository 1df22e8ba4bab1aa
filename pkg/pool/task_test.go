package pool

import (
	"errors"
	"strings"
	"testing"
)

func TestTaskFunc(t *testing.T) {
	want := errors.New("expected")
	f := TaskFunc(func() error { return want })

	if err := f.Execute(); !errors.Is(err, want) {
		t.Errorf("Execute() error = %v, want %v", err, want)
	}
	if f.Name() != "TaskFunc" {
		t.Errorf("Name() = %q, want TaskFunc", f.Name())
	}
}

func TestNamedTask(t *testing.T) {
	ran := false
	nt := NewNamedTask("my-task", TaskFunc(func() error {
		ran = true
		return nil
	}))

	if nt.Name() != "my-task" {
		t.Errorf("Name() = %q, want my-task", nt.Name())
	}
	if err := nt.Execute(); err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if !ran {
		t.Error("wrapped task did not run")
	}
}

func TestNamed(t *testing.T) {
	a := named(TaskFunc(func() error { return nil }))
	b := named(TaskFunc(func() error { return nil }))

	if !strings.HasPrefix(a.Name(), "task-") {
		t.Errorf("named TaskFunc name = %q, want task- prefix", a.Name())
	}
	if a.Name() == b.Name() {
		t.Errorf("two anonymous tasks share the name %q", a.Name())
	}

	nt := NewNamedTask("stable", TaskFunc(func() error { return nil }))
	if got := named(nt); got != Task(nt) {
		t.Error("named() rewrapped an already-named task")
	}
}
