/*
Package agent provides the LLM-backed steps of a research session:
the Researcher (producer), the Executor (finalizer), and the Supervisor
(evaluator).

All model replies cross a strict structured-decoding boundary: an agent
either returns a typed result or fails. Prose is never parsed for intent.

	client := llm.NewGroq(os.Getenv("GROQ_API_KEY"))
	researcher := agent.NewResearcher(client)
	executor := agent.NewExecutor(client, agent.WithFinalizeModel("llama-3.1-8b-instant"))

	ctrl := refine.New(researcher.Produce, executor.Finalize,
	    refine.WithEvaluator(agent.Supervisor{}.Evaluate))
*/
package agent
