/*
Package template provides ${var} placeholder expansion for prompt strings.

Agent prompts are long static strings with a handful of runtime values
(the query, accumulated notes, iteration counters). This package fills
those in without pulling in text/template's full evaluation model.

Basic usage:

	prompt := template.Expand("Research and summarize: ${query}", map[string]any{
	    "query": "go memory model",
	})

Missing variables are kept as-is by default. Use an Expander with
MissingError to fail fast instead:

	exp := template.NewExpander(template.WithMissingAction(template.MissingError))
	_, err := exp.Expand("${absent}", nil) // err: undefined variable: absent
*/
package template
