/*
Package config loads refinement session settings from YAML or JSON files.

Settings layer over Default(), so a file only needs the keys it changes:

	max_iterations: 2
	cap_policy: preserve
	step_timeout: 90s
	model:
	  research: llama-3.3-70b-versatile
	  finalize: llama-3.1-8b-instant
	memory:
	  backend: sqlite
	  path: refine_memory.db
	notepad:
	  enabled: true
	  path: research_notepad.txt

Load with:

	settings, err := config.FromFile("refine.yaml")
	if err != nil {
	    log.Fatal(err)
	}

FromFile, FromYAML, and FromJSON all validate the result; a settings value
the controller would reject (e.g. max_iterations: 0) fails at load time.
*/
package config
