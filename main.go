// Command romantable exports the romaji conversion table from an Excel
// workbook to a TSV file and publishes it with git.
package main

import "github.com/OftenOfuton/My-AZIK/cmd"

func main() {
	cmd.Execute()
}
