package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gbtranslate/internal/catalog"
	"github.com/inodb/gbtranslate/internal/translate"
)

const ambiguousRecord = `LOCUS       AMBIG_0001                 9 bp    DNA     linear   BCT 01-JAN-2020
DEFINITION  Record with an ambiguous codon.
FEATURES             Location/Qualifiers
     CDS             1..9
                     /product="ambiguous protein"
                     /protein_id="AP_000001.1"
ORIGIN
        1 atgnnntaa
//
`

// setupHome points HOME at a fresh directory so no user config is read.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// sampleFile copies the GenBank test records into a temp directory.
func sampleFile(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "internal", "genbank", "testdata", "sample.gb"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sample.gb")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the command tree with fresh config state.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestView_Prompt(t *testing.T) {
	setupHome(t)
	path := sampleFile(t)

	out, err := execute(t, "1\n0\n", "view", "--skip-incomplete", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Reading records from file '"+path+"'...")
	assert.Contains(t, out, "Record name: TEST_0001\nSequence length: 60\n")
	assert.Contains(t, out, "Found 6 features, including 3 genes.")
	assert.Contains(t, out, "0) TP_000001.1: test protein A\n")
	assert.Contains(t, out, "Which would you like to view [0-2]: You selected: 1\n")
	assert.Contains(t, out,
		"TP_000002.1: reverse strand protein with a long name that wraps onto a second line\n"+
			"1 MetLys***\n"+
			"1 ATGAAATAA\n"+
			"\n"+
			"DNA:     9 bases\n"+
			"Protein: 3 amino acids (including stop)\n")

	// Second record prompts separately.
	assert.Contains(t, out, "Record name: TEST_0002")
	assert.Contains(t, out, "Which would you like to view [0-0]: You selected: 0\n")
	assert.Contains(t, out, "TP_000004.1: second record protein\n")
}

func TestView_GeneFlagOneLetter(t *testing.T) {
	setupHome(t)
	path := sampleFile(t)

	out, err := execute(t, "", "view", "--skip-incomplete", "--gene", "0", "--one-letter", path)
	require.NoError(t, err)

	assert.NotContains(t, out, "Which would you like to view")
	assert.Contains(t, out, "TP_000001.1: test protein A\n1  M  F  * \n1 ATGTTTTAG\n")
	assert.Contains(t, out, "TP_000004.1: second record protein\n1  M  K  * \n1 ATGAAATAA\n")
}

func TestView_ByID(t *testing.T) {
	setupHome(t)
	path := sampleFile(t)

	out, err := execute(t, "", "view", "--skip-incomplete", "--id", "TP_000003.1", "--one-letter", path)
	require.NoError(t, err)
	// GTG opens the reading frame, so it reads as M.
	assert.Contains(t, out, "TP_000003.1: joined protein\n1  M  P  * \n1 GTGCCATGA\n")
	assert.NotContains(t, out, "TP_000004.1: second record protein\n1")

	_, err = execute(t, "", "view", "--skip-incomplete", "--id", "NOPE", path)
	assert.ErrorContains(t, err, `protein_id "NOPE" not found`)
}

func TestView_All(t *testing.T) {
	setupHome(t)
	path := sampleFile(t)

	out, err := execute(t, "", "view", "--skip-incomplete", "--all", "--workers", "3", path)
	require.NoError(t, err)

	var order []int
	for _, id := range []string{"TP_000001.1:", "TP_000002.1:", "TP_000003.1:", "TP_000004.1:"} {
		i := strings.LastIndex(out, id)
		require.GreaterOrEqual(t, i, 0, id)
		order = append(order, i)
	}
	assert.IsIncreasing(t, order)
	assert.Equal(t, 4, strings.Count(out, "amino acids (including stop)"))
}

func TestView_Errors(t *testing.T) {
	setupHome(t)
	path := sampleFile(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		check func(t *testing.T, err error)
	}{
		{
			name: "missing file",
			args: []string{"view", filepath.Join(t.TempDir(), "nc_missing.gb")},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "nc_missing.gb' does not exist")
			},
		},
		{
			name: "missing protein_id",
			args: []string{"view", "--gene", "0", path},
			check: func(t *testing.T, err error) {
				var mq *catalog.MissingQualifierError
				require.ErrorAs(t, err, &mq)
				assert.Equal(t, "protein_id", mq.Qualifier)
			},
		},
		{
			name:  "non-numeric selection",
			stdin: "abc\n",
			args:  []string{"view", "--skip-incomplete", path},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "invalid input: 'abc'")
			},
		},
		{
			name:  "selection out of range",
			stdin: "3\n",
			args:  []string{"view", "--skip-incomplete", path},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, catalog.ErrSelectionOutOfRange)
			},
		},
		{
			name: "no selection",
			args: []string{"view", "--skip-incomplete", path},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, io.EOF)
			},
		},
		{
			name:  "stdin input without selection flag",
			stdin: "0\n",
			args:  []string{"view", "--skip-incomplete", "-"},
			check: func(t *testing.T, err error) {
				var ue *usageError
				require.ErrorAs(t, err, &ue)
				assert.ErrorContains(t, err, "reading from stdin requires --gene, --id or --all")
			},
		},
		{
			name: "conflicting flags",
			args: []string{"view", "--all", "--gene", "1", path},
			check: func(t *testing.T, err error) {
				var ue *usageError
				assert.ErrorAs(t, err, &ue)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.stdin, tt.args...)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestView_Stdin(t *testing.T) {
	setupHome(t)
	data, err := os.ReadFile(sampleFile(t))
	require.NoError(t, err)

	out, err := execute(t, string(data), "view", "--skip-incomplete", "--gene", "0", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Reading records from file '-'...")
	assert.Contains(t, out, "TP_000001.1: test protein A\n1 MetPhe***\n")
	assert.Contains(t, out, "TP_000004.1: second record protein\n")
}

func TestView_BasePolicy(t *testing.T) {
	setupHome(t)
	path := writeFile(t, "ambiguous.gb", ambiguousRecord)

	_, err := execute(t, "", "view", "--gene", "0", path)
	var bn *translate.BadNucleotideError
	require.ErrorAs(t, err, &bn)
	assert.Equal(t, "NNN", bn.Codon)

	out, err := execute(t, "", "view", "--gene", "0", "--permissive", "--one-letter", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1  M  K  * \n1 ATGNNNTAA\n")
}

func TestView_ConfigFileAndEnv(t *testing.T) {
	home := setupHome(t)
	path := sampleFile(t)

	require.NoError(t, os.WriteFile(filepath.Join(home, ".gbtranslate.yaml"),
		[]byte("display:\n  one_letter: true\ncatalog:\n  skip_incomplete: true\n"), 0644))

	out, err := execute(t, "", "view", "--gene", "0", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1  M  F  * \n")

	// Flags win over the config file.
	out, err = execute(t, "", "view", "--gene", "0", "--one-letter=false", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 MetPhe***\n")

	t.Setenv("GBTRANSLATE_DISPLAY_ONE_LETTER", "false")
	out, err = execute(t, "", "view", "--gene", "0", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 MetPhe***\n")
}

func TestView_Cache(t *testing.T) {
	home := setupHome(t)
	path := sampleFile(t)

	_, err := execute(t, "", "view", "--skip-incomplete", "--cache", "--gene", "0", path)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, ".gbtranslate", "cache", "sample.gb.records.gob"))

	out, err := execute(t, "", "view", "--skip-incomplete", "--cache", "--gene", "0", path)
	require.NoError(t, err)
	assert.Contains(t, out, "TP_000001.1: test protein A\n")
}

func TestList(t *testing.T) {
	setupHome(t)
	path := sampleFile(t)

	out, err := execute(t, "", "list", "--skip-incomplete", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "#Record\tIndex\tProtein_id\tProduct\tLocation\tStrand", lines[0])
	assert.Equal(t, "TEST_0001\t1\tTP_000002.1\treverse strand protein with a long name that wraps onto a second line\tcomplement(13..21)\t-", lines[2])
	assert.Equal(t, "TEST_0002\t0\tTP_000004.1\tsecond record protein\t1..9\t+", lines[4])

	out, err = execute(t, "", "list", "--skip-incomplete", "--no-header", path)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(out, "\n"))
}

func TestExportAndQuery(t *testing.T) {
	setupHome(t)
	path := sampleFile(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "genes.duckdb")
	faa := filepath.Join(dir, "proteins.faa")

	out, err := execute(t, "", "export", "--skip-incomplete", "--db", db, "--fasta", faa, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 4 translations to "+db)

	fasta, err := os.ReadFile(faa)
	require.NoError(t, err)
	assert.Equal(t,
		">TP_000001.1 test protein A\nMF\n"+
			">TP_000002.1 reverse strand protein with a long name that wraps onto a second line\nMK\n"+
			">TP_000003.1 joined protein\nMP\n"+
			">TP_000004.1 second record protein\nMK\n",
		string(fasta))

	// Exporting again replaces the rows instead of duplicating them.
	_, err = execute(t, "", "export", "--skip-incomplete", "--db", db, path)
	require.NoError(t, err)

	out, err = execute(t, "", "query", "--db", db, "--product", "PROTEIN")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "TEST_0001\t2\tTP_000003.1\tjoined protein\tjoin(25..30,34..36)\t+", lines[3])

	out, err = execute(t, "", "query", "--db", db, "--protein", "TP_000002.1", "--sequence")
	require.NoError(t, err)
	assert.Equal(t, "TEST_0001\tTP_000002.1\tMK*\n", out)
}

func TestExport_FASTAStdout(t *testing.T) {
	setupHome(t)
	path := sampleFile(t)

	out, err := execute(t, "", "export", "--skip-incomplete", "--fasta", "-", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, ">TP_000001.1 test protein A\nMF\n"))
	assert.NotContains(t, out, "Exported")
}

// failingCloser buffers writes and fails on Close, like a full disk
// reporting a deferred write error.
type failingCloser struct {
	bytes.Buffer
	closed bool
}

var errCloseFailed = errors.New("no space left on device")

func (f *failingCloser) Close() error {
	f.closed = true
	return errCloseFailed
}

func TestExport_FASTACloseError(t *testing.T) {
	setupHome(t)
	fc := &failingCloser{}
	orig := createFASTA
	createFASTA = func(string) (io.WriteCloser, error) { return fc, nil }
	t.Cleanup(func() { createFASTA = orig })

	_, err := execute(t, "", "export", "--skip-incomplete", "--fasta", "proteins.faa", sampleFile(t))
	require.ErrorIs(t, err, errCloseFailed)
	assert.Contains(t, err.Error(), "close FASTA output")
	assert.True(t, fc.closed)
	assert.True(t, strings.HasPrefix(fc.String(), ">TP_000001.1 test protein A\nMF\n"))
}

func TestExport_RequiresTarget(t *testing.T) {
	setupHome(t)
	_, err := execute(t, "", "export", sampleFile(t))
	var ue *usageError
	assert.ErrorAs(t, err, &ue)
}

func TestQuery_Validation(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "", "query", "--protein", "X")
	var ue *usageError
	assert.ErrorAs(t, err, &ue)

	_, err = execute(t, "", "query", "--db", "x.duckdb", "--protein", "X", "--product", "Y")
	assert.ErrorAs(t, err, &ue)

	_, err = execute(t, "", "query", "--db", filepath.Join(t.TempDir(), "missing.duckdb"), "--protein", "X")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigSetGet(t *testing.T) {
	home := setupHome(t)
	cfgFile := filepath.Join(home, ".gbtranslate.yaml")

	out, err := execute(t, "", "config", "set", "display.one_letter", "yes")
	require.NoError(t, err)
	assert.Equal(t, "Set display.one_letter = true in "+cfgFile+"\n", out)

	out, err = execute(t, "", "config", "set", "render.workers", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Set render.workers = 4 in ")

	// Only explicitly set keys are written to the file.
	data, err := os.ReadFile(cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "display:\n    one_letter: true\nrender:\n    workers: 4\n", string(data))

	out, err = execute(t, "", "config", "get", "display.one_letter")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = execute(t, "", "config", "get", "render.workers")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	out, err = execute(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "# Config file: "+cfgFile)
	assert.Contains(t, out, "one_letter: true")
	assert.Contains(t, out, "skip_incomplete: false")
	assert.Contains(t, out, "api_key: \"\"")
}

func TestConfigRejectsBadInput(t *testing.T) {
	home := setupHome(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown key on set", []string{"config", "set", "display.colour", "true"}, `unknown config key "display.colour"`},
		{"unknown key on get", []string{"config", "get", "no.such.key"}, `unknown config key "no.such.key"`},
		{"bad bool", []string{"config", "set", "translate.permissive", "maybe"}, `expected a boolean, got "maybe"`},
		{"bad int", []string{"config", "set", "render.workers", "many"}, `expected a non-negative integer, got "many"`},
		{"negative int", []string{"config", "set", "render.workers", "-2"}, `expected a non-negative integer, got "-2"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
			var ue *usageError
			assert.ErrorAs(t, err, &ue)
		})
	}

	assert.NoFileExists(t, filepath.Join(home, ".gbtranslate.yaml"))
}

func TestVersion(t *testing.T) {
	setupHome(t)
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "gbtranslate version dev (none) built unknown\n", out)
}

func TestRunExitCodes(t *testing.T) {
	setupHome(t)
	t.Cleanup(viper.Reset)

	viper.Reset()
	assert.Equal(t, ExitUsage, run([]string{"view", "--no-such-flag"}))

	viper.Reset()
	assert.Equal(t, ExitUsage, run([]string{"list", "a.gb", "b.gb"}))

	viper.Reset()
	assert.Equal(t, ExitError, run([]string{"list", filepath.Join(t.TempDir(), "missing.gb")}))

	viper.Reset()
	assert.Equal(t, ExitSuccess, run([]string{"list", "--skip-incomplete", sampleFile(t)}))
}
