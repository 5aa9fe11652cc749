package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// confirmDeletion asks the user to confirm an asset deletion. Deletes are
// permanent on the platform, so the default answer is no.
func confirmDeletion(publicID, cloudName string) (bool, error) {
	fmt.Printf("Delete '%s' from cloud '%s'? This cannot be undone. [y/N]: ", publicID, cloudName)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
