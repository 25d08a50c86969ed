// linkvault decrypts a .pvault deposit vault and prints the stored claim
// links with their expiry state.
// Usage: linkvault -file deposits.pvault [-base https://pridge.io/]
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/xvoidlabs/pridge/claimlink"
	"github.com/xvoidlabs/pridge/internal/crypto"
)

func main() {
	filePath := flag.String("file", "", "path to the .pvault file")
	baseURL := flag.String("base", "https://pridge.io/", "claim link base URL")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: linkvault -file deposits.pvault")
		os.Exit(1)
	}

	network, err := crypto.ReadVaultNetwork(*filePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("vault network: %s\n", network)

	fmt.Fprint(os.Stderr, "password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer clear(password)

	_, data, err := crypto.DecryptVault(*filePath, password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(data.Deposits) == 0 {
		fmt.Println("vault is empty")
		return
	}

	for i, d := range data.Deposits {
		remaining := claimlink.TimeRemaining(d.ExpiresAt)
		fmt.Printf("%d. %s  created %s  (%s)\n", i+1, d.Address, d.CreatedAt, remaining.Text)
		fmt.Printf("   %s#%s\n", strings.TrimSuffix(*baseURL, "#"), d.Fragment)
	}
}
