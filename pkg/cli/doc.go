/*
Package cli provides command-line interface utilities for Vanguard.

The cli package includes output formatters, typed command errors, and
signal handling helpers used by the vanguard command.

Output Formatting:

Command results can be rendered as text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	sig := <-cli.WaitForShutdown()
	// Stop the server, then report which signal ended the run
*/
package cli
