// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/gbx/cmd/gbx/cli"
	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/compress"
	"github.com/bureau-foundation/gbx/lib/engines"
	"github.com/bureau-foundation/gbx/lib/gbx"
	"github.com/bureau-foundation/gbx/lib/manifest"
	"github.com/bureau-foundation/gbx/lib/testutil"
)

const lapsChunk = engines.ChallengeClass | 0x018

func quietOptions() []gbx.Option {
	return []gbx.Option{gbx.WithLogger(testutil.Logger())}
}

// sampleMap returns a map container with a version header chunk, an
// opaque heavy header chunk and, when codec is non-nil, a compressed
// body holding a laps chunk and an opaque padding chunk.
func sampleMap(t *testing.T, codec compress.Codec) *gbx.Container {
	t.Helper()
	container := gbx.New(engines.ChallengeClass, quietOptions()...)
	if _, err := container.Header.CreateChunk(engines.ChallengeClass|0x004,
		binary.LittleEndian.AppendUint32(nil, 6)); err != nil {
		t.Fatalf("CreateChunk: %v", err)
	}
	foreign := chunk.NewOpaque(0xDEADBEEF, chunk.Header, nil, []byte{0xFF, 0xFF})
	foreign.SetHeavy(true)
	if err := container.Header.InsertChunk(foreign); err != nil {
		t.Fatalf("InsertChunk: %v", err)
	}

	if codec != nil {
		root := container.Node().(*engines.Challenge)
		nodeType, _ := engines.Registry().Node(engines.ChallengeClass)
		definition, _ := nodeType.Chunk(lapsChunk)
		slot, err := chunk.NewSlot(*definition, root, nil)
		if err != nil {
			t.Fatalf("NewSlot: %v", err)
		}
		if err := root.Chunks().Add(slot); err != nil {
			t.Fatalf("Add: %v", err)
		}
		root.HasLaps, root.NumLaps = true, 3
		// A repetitive skippable chunk the catalogue does not know, so
		// the stream is worth compressing.
		padding := chunk.NewOpaque(engines.ChallengeClass|0x05F, chunk.Skippable, root, bytes.Repeat([]byte("lap "), 64))
		if err := root.Chunks().Add(padding); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if err := container.EncodeBody(classid.Latest, codec); err != nil {
			t.Fatalf("EncodeBody: %v", err)
		}
	}
	return container
}

func writeContainer(t *testing.T, container *gbx.Container, policy classid.Policy) string {
	t.Helper()
	data, err := container.Bytes(policy)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	return testutil.WriteFile(t, filepath.Join(t.TempDir(), "A01.Map.Gbx"), data)
}

// execute runs the command tree with default configuration.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("GBX_CONFIG", "")
	var stdout, stderr bytes.Buffer
	err := Root(&stdout, &stderr).Execute(args)
	return stdout.String(), stderr.String(), err
}

func TestCommandTree(t *testing.T) {
	root := Root(io.Discard, io.Discard)
	for _, command := range root.Subcommands {
		if command.Summary == "" {
			t.Errorf("%s: missing Summary", command.Name)
		}
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%s: neither Run nor Subcommands", command.Name)
		}
		for _, example := range command.Examples {
			if !strings.HasPrefix(example.Command, "gbx "+command.Name) {
				t.Errorf("%s: example %q does not invoke the command", command.Name, example.Command)
			}
		}
	}
}

func TestInspect(t *testing.T) {
	path := writeContainer(t, sampleMap(t, nil), classid.Latest)

	stdout, _, err := execute(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{
		"CGameCtnChallenge",
		"0x03043004",
		"ChallengeVersion",
		"0xDEADBEEF",
		"(opaque)",
		"Remap:     latest",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("inspect output missing %q:\n%s", want, stdout)
		}
	}

	if _, _, err := execute(t, "inspect"); err == nil {
		t.Error("inspect without a file succeeded")
	}
}

func TestInspectBody(t *testing.T) {
	codec, _ := compress.Lookup("zlib")
	path := writeContainer(t, sampleMap(t, codec), classid.Latest)

	if _, _, err := execute(t, "inspect", path, "--body"); err == nil {
		t.Error("decoding a compressed body without a codec succeeded")
	}
	stdout, _, err := execute(t, "inspect", path, "--body", "--codec", "zlib")
	if err != nil {
		t.Fatalf("inspect --body: %v", err)
	}
	if !strings.Contains(stdout, "0x03043018") || !strings.Contains(stdout, "skippable") {
		t.Errorf("inspect output does not list the body chunk:\n%s", stdout)
	}
}

func TestManifestFormats(t *testing.T) {
	path := writeContainer(t, sampleMap(t, nil), classid.Latest)

	jsonOut, _, err := execute(t, "manifest", path)
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	var fields struct {
		Class  string `json:"class"`
		Digest string `json:"digest"`
		Chunks []struct {
			ID string `json:"id"`
		} `json:"chunks"`
	}
	if err := json.Unmarshal([]byte(jsonOut), &fields); err != nil {
		t.Fatalf("manifest output is not JSON: %v\n%s", err, jsonOut)
	}
	if fields.Class != "0x03043000" || len(fields.Chunks) != 2 {
		t.Errorf("manifest = %+v", fields)
	}

	cborOut, _, err := execute(t, "manifest", path, "--format", "cbor")
	if err != nil {
		t.Fatalf("manifest --format cbor: %v", err)
	}
	decoded, err := manifest.DecodeCBOR(strings.NewReader(cborOut))
	if err != nil {
		t.Fatalf("DecodeCBOR: %v", err)
	}
	if decoded.Digest.String() != fields.Digest {
		t.Errorf("CBOR digest %s, JSON digest %s", decoded.Digest, fields.Digest)
	}

	diagOut, _, err := execute(t, "manifest", path, "-f", "diag")
	if err != nil {
		t.Fatalf("manifest --format diag: %v", err)
	}
	if !strings.Contains(diagOut, `"0x03043000"`) {
		t.Errorf("diagnostic notation missing the class:\n%s", diagOut)
	}

	if _, _, err := execute(t, "manifest", path, "--format", "xml"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestRewriteHeaderPolicy(t *testing.T) {
	input := writeContainer(t, sampleMap(t, nil), classid.Latest)
	output := filepath.Join(t.TempDir(), "legacy.Challenge.Gbx")

	if _, _, err := execute(t, "rewrite", input, output, "--remap", "tm2006"); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	// "GBX", version, three format bytes, the unknown byte, then the class.
	if class := binary.LittleEndian.Uint32(data[9:]); class != 0x24003000 {
		t.Errorf("written class = %#08x, want 0x24003000", class)
	}

	container, err := gbx.ReadFile(output, quietOptions()...)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if container.Header.Remap != classid.TrackMania2006 || container.Header.Class != engines.ChallengeClass {
		t.Errorf("read back as %s class %s", container.Header.Remap, container.Header.Class)
	}
	if _, ok := container.Header.Chunks().Find(engines.ChallengeClass | 0x004); !ok {
		t.Error("version chunk lost in the rewrite")
	}

	// Rewriting back restores the original bytes.
	restored := filepath.Join(t.TempDir(), "restored.Map.Gbx")
	if _, _, err := execute(t, "rewrite", output, restored, "--remap", "latest"); err != nil {
		t.Fatalf("rewrite back: %v", err)
	}
	original, _ := os.ReadFile(input)
	again, _ := os.ReadFile(restored)
	if !bytes.Equal(original, again) {
		t.Error("latest -> tm2006 -> latest is not byte-identical")
	}
}

func TestRewriteBody(t *testing.T) {
	zlib, _ := compress.Lookup("zlib")
	zstd, _ := compress.Lookup("zstd")
	input := writeContainer(t, sampleMap(t, zlib), classid.Latest)
	output := filepath.Join(t.TempDir(), "out.Gbx")

	_, _, err := execute(t, "rewrite", input, output, "--remap", "tm2006", "--codec", "zlib", "--encode", "zstd")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	container, err := gbx.ReadFile(output, quietOptions()...)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if err := container.DecodeBody(zstd); err != nil {
		t.Fatalf("DecodeBody: %v", err)
	}
	root := container.Node().(*engines.Challenge)
	if _, err := chunk.Get[*engines.ChallengeLaps](root.Chunks()); err != nil {
		t.Fatalf("laps chunk: %v", err)
	}
	if !root.HasLaps || root.NumLaps != 3 {
		t.Errorf("laps = %v %d, want true 3", root.HasLaps, root.NumLaps)
	}
}

func TestRewriteRejectsBadPolicy(t *testing.T) {
	input := writeContainer(t, sampleMap(t, nil), classid.Latest)
	_, _, err := execute(t, "rewrite", input, filepath.Join(t.TempDir(), "out.Gbx"), "--remap", "tm1999")
	if err == nil || !strings.Contains(err.Error(), "tm1999") {
		t.Errorf("rewrite --remap tm1999: error = %v", err)
	}
}

func TestVerify(t *testing.T) {
	good := writeContainer(t, sampleMap(t, nil), classid.TrackMania2006)
	bad := testutil.WriteFile(t, filepath.Join(t.TempDir(), "broken.Gbx"), []byte("not a container"))

	stdout, _, err := execute(t, "verify", "--discover", good)
	if err != nil {
		t.Fatalf("verify: %v\n%s", err, stdout)
	}
	if !strings.HasPrefix(stdout, "ok") {
		t.Errorf("verify output = %q", stdout)
	}

	stdout, _, err = execute(t, "verify", good, bad)
	var exitError *cli.ExitError
	if !errors.As(err, &exitError) || exitError.Code != 1 {
		t.Errorf("verify with a broken file: error = %v, want exit code 1", err)
	}
	if !strings.Contains(stdout, "FAIL  "+bad) {
		t.Errorf("verify output does not report the broken file:\n%s", stdout)
	}
}

func TestFirstDifference(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"abc", "abc", -1},
		{"abc", "abd", 2},
		{"abc", "ab", 2},
		{"", "", -1},
	}
	for _, test := range tests {
		if got := firstDifference([]byte(test.a), []byte(test.b)); got != test.want {
			t.Errorf("firstDifference(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	data, err := sampleMap(t, nil).Bytes(classid.Latest)
	if err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, filepath.Join(root, "A01.Map.Gbx"), data)

	stdout, _, err := execute(t, "scan", root, "--json", "-j", "2")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var rows []scanRow
	if err := json.Unmarshal([]byte(stdout), &rows); err != nil {
		t.Fatalf("scan output is not JSON: %v\n%s", err, stdout)
	}
	if len(rows) != 1 || rows[0].ClassName != "CGameCtnChallenge" || rows[0].HeaderChunks != 2 || rows[0].Opaque != 1 {
		t.Errorf("rows = %+v", rows)
	}

	testutil.WriteFile(t, filepath.Join(root, "broken.Gbx"), []byte("junk"))
	stdout, _, err = execute(t, "scan", root)
	var exitError *cli.ExitError
	if !errors.As(err, &exitError) || exitError.Code != 1 {
		t.Errorf("scan with a broken file: error = %v, want exit code 1", err)
	}
	if !strings.Contains(stdout, "2 files") {
		t.Errorf("scan table missing the footer:\n%s", stdout)
	}
}

func TestConfigFlag(t *testing.T) {
	path := writeContainer(t, sampleMap(t, nil), classid.Latest)
	configPath := filepath.Join(t.TempDir(), "gbx.yaml")
	testutil.WriteFile(t, configPath, []byte("output:\n  format: diag\n"))

	_, _, err := execute(t, "manifest", path, "--config", configPath)
	if err == nil || !strings.Contains(err.Error(), "output.format") {
		t.Errorf("invalid configuration: error = %v, want an output.format complaint", err)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(stdout, "gbx ") || !strings.Contains(stdout, "Formats: GBX v3-v6") {
		t.Errorf("version output = %q", stdout)
	}
}
