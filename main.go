// The main package for the novel-scraper executable.
package main

import (
	"github.com/RKPYI/novel-scraper/cmd"
)

func main() {
	cmd.Execute()
}
