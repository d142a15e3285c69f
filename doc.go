// Package overlap scores generated text against reference text with
// ROUGE-1, ROUGE-2, ROUGE-L and BLEU.
//
// A Client bundles a scoring policy with logging, tracing and optional run
// archiving:
//
//	tp := trace.NewTracerProvider()
//	defer tp.Shutdown(context.Background())
//
//	client, err := overlap.New(tp, overlap.WithParallelism(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rows, err := input.ReadCSV(f, input.CSVOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := client.Evaluate(ctx, eval.NewRows(rows))
//
// # Main Packages
//
// For the scoring engine, see the rouge, bleu and score packages.
//
// For corpus evaluation, see the eval package.
//
// For reading input and writing reports, see the input, report and store packages.
//
// # Configuration
//
// The client reads configuration from environment variables.
// See [config.FromEnv] for a complete list of supported environment variables.
package overlap
