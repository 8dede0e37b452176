// Command generate-secret prints a random SECRET_KEY value.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/carepredict/authapi/internal/auth"
)

func main() {
	export := flag.Bool("export", false, "Print as a shell export statement")
	flag.Parse()

	secret, err := auth.GenerateSecret()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate secret:", err)
		os.Exit(1)
	}

	if *export {
		fmt.Printf("export SECRET_KEY=%s\n", secret)
		return
	}
	fmt.Println(secret)
}
