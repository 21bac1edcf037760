package transform_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/hookbridge/transform"
)

func ctx() context.Context { return context.Background() }

func mustNew(t *testing.T, source string) *transform.Transformer {
	t.Helper()
	tf, err := transform.New(source, 0)
	if err != nil {
		t.Fatal(err)
	}
	return tf
}

func TestCompileError(t *testing.T) {
	_, err := transform.New("result = {", 0)
	if err == nil {
		t.Fatal("expected compile error")
	}
}

func TestObjectResult(t *testing.T) {
	tf := mustNew(t, `result = {version: "v2", plain: "hello " + data.name, html: "<b>hi</b>", msgtype: "m.text"};`)

	res, err := tf.Execute(ctx(), map[string]any{"name": "world"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Plain != "hello world" {
		t.Errorf("Plain = %q", res.Plain)
	}
	if res.HTML != "<b>hi</b>" {
		t.Errorf("HTML = %q", res.HTML)
	}
	if res.MsgType != "m.text" {
		t.Errorf("MsgType = %q", res.MsgType)
	}
}

func TestStringResultLegacyWrap(t *testing.T) {
	tf := mustNew(t, `result = "plain text";`)

	res, err := tf.Execute(ctx(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Plain != "Received webhook: plain text" {
		t.Errorf("Plain = %q", res.Plain)
	}
}

func TestNonObjectResult(t *testing.T) {
	tf := mustNew(t, `result = 42;`)

	res, err := tf.Execute(ctx(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Plain != "No content" {
		t.Errorf("Plain = %q", res.Plain)
	}
}

func TestMissingResult(t *testing.T) {
	tf := mustNew(t, `var unused = 1;`)

	res, err := tf.Execute(ctx(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Plain != "No content" {
		t.Errorf("Plain = %q", res.Plain)
	}
}

func TestEmptyResult(t *testing.T) {
	tf := mustNew(t, `result = {version: "v2", empty: true};`)

	res, err := tf.Execute(ctx(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Fatalf("expected nil result for empty, got %+v", res)
	}
}

func TestWrongVersion(t *testing.T) {
	tf := mustNew(t, `result = {version: "v1", plain: "x"};`)

	_, err := tf.Execute(ctx(), nil)
	if !errors.Is(err, transform.ErrBadVersion) {
		t.Fatalf("expected ErrBadVersion, got %v", err)
	}
}

func TestMissingPlain(t *testing.T) {
	tf := mustNew(t, `result = {version: "v2"};`)

	_, err := tf.Execute(ctx(), nil)
	if !errors.Is(err, transform.ErrBadPlain) {
		t.Fatalf("expected ErrBadPlain, got %v", err)
	}
}

func TestWrongHTMLType(t *testing.T) {
	tf := mustNew(t, `result = {version: "v2", plain: "x", html: 5};`)

	_, err := tf.Execute(ctx(), nil)
	if !errors.Is(err, transform.ErrBadHTML) {
		t.Fatalf("expected ErrBadHTML, got %v", err)
	}
}

func TestThrownError(t *testing.T) {
	tf := mustNew(t, `throw new Error("boom");`)

	_, err := tf.Execute(ctx(), nil)
	if err == nil {
		t.Fatal("expected execution error")
	}
}

func TestTimeout(t *testing.T) {
	tf, err := transform.New(`while (true) {}`, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	_, err = tf.Execute(ctx(), nil)
	if !errors.Is(err, transform.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("interrupt took too long: %v", elapsed)
	}
}

func TestAPIVersionBinding(t *testing.T) {
	tf := mustNew(t, `result = {version: "v2", plain: TransformationApiVersion};`)

	res, err := tf.Execute(ctx(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Plain != "v2" {
		t.Errorf("Plain = %q", res.Plain)
	}
}

func TestNoStateLeakBetweenRuns(t *testing.T) {
	tf := mustNew(t, `
		if (typeof leaked === "undefined") {
			leaked = true;
			result = {version: "v2", plain: "first"};
		} else {
			result = {version: "v2", plain: "second"};
		}
	`)

	for i := 0; i < 2; i++ {
		res, err := tf.Execute(ctx(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if res.Plain != "first" {
			t.Fatalf("run %d observed leaked state: %q", i, res.Plain)
		}
	}
}
