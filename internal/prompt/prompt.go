// Package prompt implements an interactive operator session over a hash table.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
)

const menu = "0) end\n1) insert\n2) search\n3) delete\n4) stats\n>> "

const (
	optEnd = iota
	optInsert
	optSearch
	optDelete
	optStats
)

// Table is a string map the prompt operates on.
type Table interface {
	Insert(key, value string)
	Search(key string) (string, bool)
	Delete(key string) bool
	Len() int
	Cap() int
	BaseCap() int
	Load() int
}

// Prompt reads whitespace-delimited tokens from input, runs the chosen operations and prints results.
type Prompt struct {
	table   Table
	in      *bufio.Scanner
	out     io.Writer
	logger  *zap.Logger
	tokens  chan string // Closed when input is exhausted
	scanErr error       // Valid after tokens is closed
	err     error       // First output error
}

// New creates a prompt over table reading operator input from in and printing to out.
func New(table Table, in io.Reader, out io.Writer, logger *zap.Logger) *Prompt {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)
	return &Prompt{
		table:  table,
		in:     scanner,
		out:    out,
		logger: logger,
	}
}

// Run handles options until "end" is chosen, input is exhausted or ctx is canceled. A canceled ctx
// interrupts a pending read, and a token arriving after cancellation is not handled.
func (p *Prompt) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	p.tokens = make(chan string)
	go p.scan(done)

	for p.err == nil {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.printf(menu)
		tok, ok := p.token(ctx)
		if !ok {
			break
		}
		opt, err := strconv.Atoi(tok)
		if err != nil {
			p.printf("Invalid option: %s\n", tok)
			continue
		}

		switch opt {
		case optEnd:
			return p.err
		case optInsert:
			p.insert(ctx)
		case optSearch:
			p.search(ctx)
		case optDelete:
			p.delete(ctx)
		case optStats:
			p.stats()
		}
	}
	if p.err != nil {
		return p.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.scanErr != nil {
		return fmt.Errorf("read input: %w", p.scanErr)
	}
	return nil
}

// scan feeds tokens until input ends or done is closed. A read blocked on input outlives Run
// until the reader returns.
func (p *Prompt) scan(done <-chan struct{}) {
	defer close(p.tokens)
	for p.in.Scan() {
		select {
		case p.tokens <- p.in.Text():
		case <-done:
			return
		}
	}
	p.scanErr = p.in.Err()
}

func (p *Prompt) insert(ctx context.Context) {
	p.printf("key value \n>> ")
	key, ok := p.token(ctx)
	if !ok {
		return
	}
	value, ok := p.token(ctx)
	if !ok {
		return
	}
	p.table.Insert(key, value)
	p.logger.Debug("inserted", zap.String("key", key), zap.Int("count", p.table.Len()))
}

func (p *Prompt) search(ctx context.Context) {
	p.printf("key\n>> ")
	key, ok := p.token(ctx)
	if !ok {
		return
	}
	if value, found := p.table.Search(key); found {
		p.printf("Found: %s\n", value)
	} else {
		p.printf("Not found\n")
	}
}

func (p *Prompt) delete(ctx context.Context) {
	p.printf("key\n>> ")
	key, ok := p.token(ctx)
	if !ok {
		return
	}
	if p.table.Delete(key) {
		p.logger.Debug("deleted", zap.String("key", key), zap.Int("count", p.table.Len()))
		p.printf("Deleted\n")
	} else {
		p.printf("Not found\n")
	}
}

func (p *Prompt) stats() {
	p.printf("count: %d\ncapacity: %d\nbase capacity: %d\nload: %d%%\n",
		p.table.Len(), p.table.Cap(), p.table.BaseCap(), p.table.Load())
}

func (p *Prompt) token(ctx context.Context) (string, bool) {
	select {
	case tok, ok := <-p.tokens:
		if !ok || ctx.Err() != nil {
			return "", false
		}
		return tok, true
	case <-ctx.Done():
		return "", false
	}
}

func (p *Prompt) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	if _, err := fmt.Fprintf(p.out, format, args...); err != nil {
		p.err = fmt.Errorf("write output: %w", err)
	}
}
