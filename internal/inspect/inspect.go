// Package inspect implements the interactive concept inspector.
package inspect

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/inferdelta/internal/cmd/emoji"
	"github.com/agentstation/inferdelta/internal/cmd/output"
	"github.com/agentstation/inferdelta/pkg/errors"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/logging"
)

// Quit ends an inspector session.
const Quit = "quit"

const prompt = "concept> "

// Inspector prints the stated and inferred relationships of concepts read
// one per line.
type Inspector struct {
	graphs []*graph.Graph
	format output.Format
	prompt bool
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithFormat sets the output format for each lookup.
func WithFormat(format output.Format) Option {
	return func(i *Inspector) { i.format = format }
}

// WithPrompt enables a prompt before each read.
func WithPrompt(enabled bool) Option {
	return func(i *Inspector) { i.prompt = enabled }
}

// New creates an inspector over the given graphs, shown in order.
func New(graphs []*graph.Graph, opts ...Option) *Inspector {
	i := &Inspector{graphs: graphs, format: output.FormatTable}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run reads concept identifiers from in until quit, EOF or cancellation.
func (i *Inspector) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	logger := logging.FromContext(ctx)
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i.prompt {
			if _, err := fmt.Fprint(out, prompt); err != nil {
				return err
			}
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, Quit):
			logger.Debug().Msg("Inspector session ended")
			return nil
		}

		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			if _, err := fmt.Fprintf(out, "%s %q is not a concept identifier\n", emoji.Warning, line); err != nil {
				return err
			}
			continue
		}
		if err := i.Show(out, id); err != nil {
			return err
		}
	}
}

// section is one graph's view of a concept.
type section struct {
	view    graph.View
	concept *graph.Concept
}

// lookup returns the concept from every graph that knows it, or a
// NotFoundError when none does.
func (i *Inspector) lookup(id int64) ([]section, error) {
	var found []section
	for _, g := range i.graphs {
		if c, ok := g.Concept(id); ok {
			found = append(found, section{view: g.View(), concept: c})
		}
	}
	if len(found) == 0 {
		return nil, errors.NewNotFoundError("concept", strconv.FormatInt(id, 10))
	}
	return found, nil
}

// Show prints the relationships of one concept in every graph. An unknown
// concept is reported on out and is not an error.
func (i *Inspector) Show(out io.Writer, id int64) error {
	sections, err := i.lookup(id)
	if errors.IsNotFound(err) {
		_, err := fmt.Fprintf(out, "%s %v\n", emoji.Error, err)
		return err
	}

	title := cases.Title(language.English)
	for _, s := range sections {
		heading := fmt.Sprintf("%s %d", title.String(s.view.String()), id)
		if err := output.FormatRelationships(out, heading, s.concept.Relationships(), i.format); err != nil {
			return err
		}
	}
	return nil
}
