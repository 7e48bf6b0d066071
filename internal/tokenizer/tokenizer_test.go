package tokenizer

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// readRows scans input to the end and returns the fields grouped by row.
func readRows(t *testing.T, input string, opts Options) [][]string {
	t.Helper()
	r := NewFieldReader(strings.NewReader(input), opts)
	var rows [][]string
	var row []string
	for {
		field, term, err := r.ReadField()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if term == EndOfStream && r.Column() == 0 && r.Consumed() == 0 {
			return rows
		}
		row = append(row, string(field))
		if term.EndsRow() {
			rows = append(rows, row)
			row = nil
			r.Reset()
			if term == EndOfStream {
				return rows
			}
		}
	}
}

func equalRows(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func TestTerminator_String(t *testing.T) {
	tests := []struct {
		term Terminator
		want string
	}{
		{FieldSep, "FieldSep"},
		{RecordSep, "RecordSep"},
		{EndOfStream, "EndOfStream"},
		{Terminator(9), "Terminator(9)"},
	}
	for _, tt := range tests {
		if got := tt.term.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if FieldSep.EndsRow() || !RecordSep.EndsRow() || !EndOfStream.EndsRow() {
		t.Error("EndsRow mismatch")
	}
}

func TestReadField_Rows(t *testing.T) {
	semi := Options{Comma: ';', Terminator: '|', Quote: '\''}
	tests := []struct {
		name  string
		input string
		opts  Options
		want  [][]string
	}{
		{
			name:  "simple row",
			input: "a,b,c\n",
			opts:  DefaultOptions(),
			want:  [][]string{{"a", "b", "c"}},
		},
		{
			name:  "no trailing newline",
			input: "x,y,z",
			opts:  DefaultOptions(),
			want:  [][]string{{"x", "y", "z"}},
		},
		{
			name:  "crlf stripped",
			input: "a,b\r\nc,d\r\n",
			opts:  DefaultOptions(),
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "lone cr kept",
			input: "a\rb,c\n",
			opts:  DefaultOptions(),
			want:  [][]string{{"a\rb", "c"}},
		},
		{
			name:  "empty fields",
			input: ",,\n",
			opts:  DefaultOptions(),
			want:  [][]string{{"", "", ""}},
		},
		{
			name:  "trailing comma at eof",
			input: "a,",
			opts:  DefaultOptions(),
			want:  [][]string{{"a", ""}},
		},
		{
			name:  "escaped quote",
			input: `"a""b"` + "\n",
			opts:  DefaultOptions(),
			want:  [][]string{{`a"b`}},
		},
		{
			name:  "quoted separators",
			input: "\"x,y\nz\",w\n",
			opts:  DefaultOptions(),
			want:  [][]string{{"x,y\nz", "w"}},
		},
		{
			name:  "quote exit re-evaluates next byte",
			input: `"a"b,c` + "\n",
			opts:  DefaultOptions(),
			want:  [][]string{{"ab", "c"}},
		},
		{
			name:  "quote exit then separator",
			input: `"a",b`,
			opts:  DefaultOptions(),
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "quote reopens after exit",
			input: `"a"x"b,c"` + "\n",
			opts:  DefaultOptions(),
			want:  [][]string{{"axb,c"}},
		},
		{
			name:  "quote in middle of unquoted field",
			input: `ab"c,d"e` + "\n",
			opts:  DefaultOptions(),
			want:  [][]string{{"abc,de"}},
		},
		{
			name:  "quote closed by eof",
			input: `"abc"`,
			opts:  DefaultOptions(),
			want:  [][]string{{"abc"}},
		},
		{
			name:  "unterminated quote at eof",
			input: `"abc`,
			opts:  DefaultOptions(),
			want:  [][]string{{"abc"}},
		},
		{
			name:  "explicit terminator keeps newlines",
			input: "a;b\nc|d|",
			opts:  semi,
			want:  [][]string{{"a", "b\nc"}, {"d"}},
		},
		{
			name:  "custom quote",
			input: "'a;b';'it''s'|",
			opts:  semi,
			want:  [][]string{{"a;b", "it's"}},
		},
		{
			name:  "nul bytes dropped",
			input: "a\x00b,c\x00\n",
			opts:  DefaultOptions(),
			want:  [][]string{{"ab", "c"}},
		},
		{
			name:  "nul field separator",
			input: "a\x00b\x00c\n",
			opts:  Options{Comma: 0, AutoTerminator: true, Quote: '"'},
			want:  [][]string{{"a", "b", "c"}},
		},
		{
			name:  "nul record separator",
			input: "a,b\x00c,d\x00",
			opts:  Options{Comma: ',', Terminator: 0, Quote: '"'},
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "empty line is one empty field",
			input: "\n",
			opts:  DefaultOptions(),
			want:  [][]string{{""}},
		},
		{
			name:  "empty input",
			input: "",
			opts:  DefaultOptions(),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readRows(t, tt.input, tt.opts)
			if !equalRows(got, tt.want) {
				t.Errorf("rows = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestReadField_NaiveSplit checks that unquoted input splits exactly like strings.Split.
func TestReadField_NaiveSplit(t *testing.T) {
	inputs := []string{
		"a,b,c",
		"one",
		",leading",
		"trailing,",
		"a,,b,,,c",
		"x y,z\tw",
	}
	for _, line := range inputs {
		got := readRows(t, line+"\n", DefaultOptions())
		want := [][]string{strings.Split(line, ",")}
		if !equalRows(got, want) {
			t.Errorf("input %q: rows = %q, want %q", line, got, want)
		}
	}
}

func TestReadField_ColumnCounter(t *testing.T) {
	r := NewFieldReader(strings.NewReader("a,b"), DefaultOptions())
	if r.Column() != -1 {
		t.Fatalf("initial Column() = %d, want -1", r.Column())
	}
	for want := 0; want < 3; want++ {
		if _, _, err := r.ReadField(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Column() != want {
			t.Errorf("Column() = %d, want %d", r.Column(), want)
		}
	}
	// The third call hit end of stream with nothing read but still counted.
	if r.Consumed() != 0 {
		t.Errorf("Consumed() = %d, want 0", r.Consumed())
	}
	r.Reset()
	if r.Column() != -1 {
		t.Errorf("Column() after Reset = %d, want -1", r.Column())
	}
}

func TestReadField_EmptyStream(t *testing.T) {
	r := NewFieldReader(strings.NewReader(""), DefaultOptions())
	field, term, err := r.ReadField()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if term != EndOfStream || len(field) != 0 || r.Column() != 0 || r.Consumed() != 0 {
		t.Errorf("got field %q term %v col %d consumed %d", field, term, r.Column(), r.Consumed())
	}
}

func TestReadField_LargeField(t *testing.T) {
	big := strings.Repeat("x", 5*fieldChunk+17)
	rows := readRows(t, big+","+big+"\n", DefaultOptions())
	if len(rows) != 1 || len(rows[0]) != 2 || rows[0][0] != big || rows[0][1] != big {
		t.Errorf("large fields not preserved")
	}
}

func TestSkipRow(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantTerm Terminator
		wantNext string
	}{
		{"plain", "a,b,c\nnext\n", RecordSep, "next"},
		{"quoted newline", "a,\"x\ny\",c\nnext\n", RecordSep, "next"},
		{"doubled quote", "a,\"x\"\"\ny\"\nnext\n", RecordSep, "next"},
		{"quote exit lookahead is newline", "a,\"x\"\nnext\n", RecordSep, "next"},
		{"eof", "a,b,c", EndOfStream, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewFieldReader(strings.NewReader(tt.input), DefaultOptions())
			if _, term, err := r.ReadField(); err != nil || term != FieldSep {
				t.Fatalf("ReadField = %v, %v", term, err)
			}
			term, err := r.SkipRow()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if term != tt.wantTerm {
				t.Errorf("SkipRow() = %v, want %v", term, tt.wantTerm)
			}
			r.Reset()
			field, _, err := r.ReadField()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(field) != tt.wantNext {
				t.Errorf("next field = %q, want %q", field, tt.wantNext)
			}
		})
	}
}

// TestSkipRow_MatchesReadField checks that skipping a row leaves the source at the
// same place as reading every field of it.
func TestSkipRow_MatchesReadField(t *testing.T) {
	inputs := []string{
		"a,b\nz\n",
		"\"a\nb\",\"c\"\"\n\"\nz\n",
		"\"a\"b\"\nc\"\nz\n",
		"a\x00,\"\x00\n\"\nz\n",
	}
	for _, input := range inputs {
		read := NewFieldReader(strings.NewReader(input), DefaultOptions())
		for {
			_, term, err := read.ReadField()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if term.EndsRow() {
				break
			}
		}
		read.Reset()
		afterRead, _, _ := read.ReadField()

		skip := NewFieldReader(strings.NewReader(input), DefaultOptions())
		if _, err := skip.SkipRow(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		skip.Reset()
		afterSkip, _, _ := skip.ReadField()

		if string(afterRead) != string(afterSkip) {
			t.Errorf("input %q: after read %q, after skip %q", input, afterRead, afterSkip)
		}
	}
}

type failingReader struct {
	data string
	err  error
}

func (f *failingReader) ReadByte() (byte, error) {
	if f.data == "" {
		return 0, f.err
	}
	b := f.data[0]
	f.data = f.data[1:]
	return b, nil
}

func TestReadField_SourceError(t *testing.T) {
	boom := errors.New("boom")
	r := NewFieldReader(&failingReader{data: "ab", err: boom}, DefaultOptions())
	_, _, err := r.ReadField()
	if !errors.Is(err, boom) {
		t.Errorf("ReadField error = %v, want %v", err, boom)
	}

	r = NewFieldReader(&failingReader{data: "\"a\"", err: boom}, DefaultOptions())
	if _, err := r.SkipRow(); !errors.Is(err, boom) {
		t.Errorf("SkipRow error = %v, want %v", err, boom)
	}
}

func TestStreamSource(t *testing.T) {
	input := "héllo,\"wörld\"\n"
	r := NewFieldReader(NewStringSource(input), DefaultOptions())
	first, _, err := r.ReadField()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first) != "héllo" {
		t.Errorf("first = %q, want %q", first, "héllo")
	}
	second, term, err := r.ReadField()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(second) != "wörld" || term != RecordSep {
		t.Errorf("second = %q %v, want %q RecordSep", second, term, "wörld")
	}

	src := NewReaderSource(strings.NewReader("ab"))
	var got []byte
	for {
		b, err := src.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, b)
	}
	if string(got) != "ab" {
		t.Errorf("reader source = %q, want %q", got, "ab")
	}
}

func TestFileSource_Sync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	if err := os.WriteFile(path, []byte("a,b\nc,d\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src := NewFileSource(f)
	r := NewFieldReader(src, DefaultOptions())
	if _, err := r.SkipRow(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := src.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	off, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		t.Fatal(err)
	}
	if off != 4 {
		t.Errorf("offset after Sync = %d, want 4", off)
	}

	rest, err := bufio.NewReader(f).ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if rest != "c,d\n" {
		t.Errorf("remaining = %q, want %q", rest, "c,d\n")
	}
}
