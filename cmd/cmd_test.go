package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/brogergvhs/yymh/internal/jsunpack"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestDebugPackThenUnpack(t *testing.T) {
	const script = `var pix="https://img.example/1/";var pvalue=["2_3.jpg"];` +
		`for(var i=0;i<pvalue.length;i++){pvalue[i]=pix+pvalue[i]+"?cid=1&key=k"}`

	packed, err := run(t, script, "debug", "pack", "--radix", "36")
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if !jsunpack.IsPacked(packed) {
		t.Fatalf("pack output is not packed: %q", packed)
	}

	unpacked, err := run(t, packed, "debug", "unpack")
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if strings.TrimSpace(unpacked) != script {
		t.Fatalf("round trip mismatch:\n%s", unpacked)
	}

	u, err := run(t, packed, "debug", "unpack", "--formula")
	if err != nil {
		t.Fatalf("formula: %v", err)
	}
	if strings.TrimSpace(u) != "https://img.example/1/2_3.jpg?cid=1&key=k" {
		t.Fatalf("formula output = %q", u)
	}
}

func TestDebugUnpack_NotPacked(t *testing.T) {
	_, err := run(t, "var a=1;", "debug", "unpack", "--formula=false")
	if !errors.Is(err, jsunpack.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestSplitExt(t *testing.T) {
	got := splitExt("webp|.JPG, png")
	if strings.Join(got, ",") != "webp,jpg,png" {
		t.Fatalf("splitExt = %v", got)
	}
	if splitExt("") != nil {
		t.Fatalf("empty input should give nil")
	}
}
