package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var answers = map[string]bool{
	"y":   true,
	"yes": true,
	"n":   false,
	"no":  false,
}

func prompt(cmd *cobra.Command, q string) bool {
	cmd.Print("> " + q + " [Y/N] ")
	var answer string
	fmt.Fscan(cmd.InOrStdin(), &answer)
	return answers[strings.ToLower(answer)]
}
