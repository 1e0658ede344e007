package prompt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bdragon300/doublehash/doublehash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func run(t *testing.T, input string) (string, *doublehash.HashTable) {
	t.Helper()
	table := doublehash.NewHashTableDefault()
	var out bytes.Buffer
	err := New(table, strings.NewReader(input), &out, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	return out.String(), table
}

func TestPrompt(t *testing.T) {
	t.Run("end right away; should print menu once", func(t *testing.T) {
		out, _ := run(t, "0\n")
		assert.Equal(t, menu, out)
	})

	t.Run("insert and search; should print found value", func(t *testing.T) {
		out, table := run(t, "1\na 1\n1 b 2\n1 a 3\n2 a\n2 b\n0\n")

		assert.Equal(t, 2, table.Len())
		assert.Equal(t, 5, strings.Count(out, "key"))
		assert.Contains(t, out, "Found: 3\n")
		assert.Contains(t, out, "Found: 2\n")
		assert.NotContains(t, out, "Found: 1\n")
	})

	t.Run("search missed key; should print not found", func(t *testing.T) {
		out, _ := run(t, "2 nope 0")
		assert.Equal(t, menu+"key\n>> Not found\n"+menu, out)
	})

	t.Run("delete; should remove key", func(t *testing.T) {
		out, table := run(t, "1 a 1 3 a 3 a 2 a 0")

		assert.Equal(t, 0, table.Len())
		assert.Equal(t, menu+"key value \n>> "+
			menu+"key\n>> Deleted\n"+
			menu+"key\n>> Not found\n"+
			menu+"key\n>> Not found\n"+
			menu, out)
	})

	t.Run("stats; should print table metrics", func(t *testing.T) {
		out, _ := run(t, "1 a 1 1 b 2 4 0")
		assert.Contains(t, out, "count: 2\ncapacity: 5\nbase capacity: 5\nload: 40%\n")
	})

	t.Run("unknown and invalid options; should be skipped", func(t *testing.T) {
		out, table := run(t, "9 x 1 a 1 0")

		assert.Equal(t, 1, table.Len())
		assert.Contains(t, out, "Invalid option: x\n")
		assert.Equal(t, 4, strings.Count(out, menu))
	})

	t.Run("input ends; should finish session", func(t *testing.T) {
		_, table := run(t, "1 a 1 1 b")
		assert.Equal(t, 1, table.Len())
		v, ok := table.Search("a")
		assert.True(t, ok)
		assert.Equal(t, "1", v)
	})

	t.Run("output fails; should return error", func(t *testing.T) {
		p := New(doublehash.NewHashTableDefault(), strings.NewReader("2 a 0"), failingWriter{}, zap.NewNop())
		err := p.Run(context.Background())
		assert.ErrorContains(t, err, "broken pipe")
	})

	t.Run("context canceled; should stop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var out bytes.Buffer
		err := New(doublehash.NewHashTableDefault(), strings.NewReader("0"), &out, zap.NewNop()).Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, out.String())
	})

	t.Run("context canceled while waiting for input; should stop and ignore later input", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		table := doublehash.NewHashTableDefault()
		var out bytes.Buffer
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		result := make(chan error, 1)
		go func() { result <- New(table, pr, &out, zap.NewNop()).Run(ctx) }()

		time.Sleep(50 * time.Millisecond) // Let Run block on reading the option
		cancel()

		select {
		case err := <-result:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("Run is still blocked after cancel")
		}

		// Feed tokens typed after cancellation, the reader takes them and quits
		_, err := pw.Write([]byte("1 a 1 "))
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
		assert.NotContains(t, out.String(), "key value")
	})

	t.Run("context canceled between key and value; should not insert", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		table := doublehash.NewHashTableDefault()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		result := make(chan error, 1)
		go func() { result <- New(table, pr, io.Discard, zap.NewNop()).Run(ctx) }()

		_, err := pw.Write([]byte("1 a "))
		require.NoError(t, err)
		time.Sleep(50 * time.Millisecond) // Let Run block on reading the value
		cancel()

		select {
		case err := <-result:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("Run is still blocked after cancel")
		}
		assert.Equal(t, 0, table.Len())
	})
}
