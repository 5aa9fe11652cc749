package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/tree"
)

// newFoldersCmd creates the 'folders' command group.
func newFoldersCmd() *cobra.Command {
	foldersCmd := &cobra.Command{
		Use:   "folders",
		Short: "Browse the library's folder hierarchy",
	}

	foldersCmd.AddCommand(newFoldersListCmd())
	foldersCmd.AddCommand(newFoldersTreeCmd())

	return foldersCmd
}

func newFoldersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [path]",
		Short: "List folders at the root or under a path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			client, err := a.requireClient()
			if err != nil {
				return err
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			folders, err := client.ListSubfolders(GetContext(), path)
			if err != nil {
				return err
			}

			if len(folders) == 0 {
				fmt.Println("No folders.")
				return nil
			}
			for _, f := range folders {
				fmt.Println(f.Path)
			}
			return nil
		},
	}
}

func newFoldersTreeCmd() *cobra.Command {
	var (
		maxDepth     int
		showAssets   bool
		resourceType string
	)

	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Print the folder hierarchy as a tree",
		Long: `Print the folder hierarchy as a tree, starting at the library root
or at the given path. With --assets, each folder's direct assets are
printed as leaves.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			client, err := a.requireClient()
			if err != nil {
				return err
			}

			provider := tree.NewProvider(client, a.bus)
			defer provider.Close()
			provider.SetPredicate(tree.Predicate{ResourceType: models.ResourceType(resourceType)})

			var root *tree.Node
			if len(args) == 1 {
				root = &tree.Node{Kind: tree.KindFolder, Folder: models.Folder{Name: args[0], Path: args[0]}}
				fmt.Println(args[0])
			} else {
				fmt.Println("/")
			}

			return printTree(GetContext(), provider, root, showAssets, 1, maxDepth)
		},
	}

	cmd.Flags().IntVar(&maxDepth, "depth", 5, "Maximum depth to descend")
	cmd.Flags().BoolVar(&showAssets, "assets", false, "Include each folder's assets as leaves")
	cmd.Flags().StringVarP(&resourceType, "type", "t", "image", "Resource type for asset leaves (image, video, raw)")
	return cmd
}

// printTree walks the provider depth-first. Each uncached folder costs one
// listing round, so deep trees cost proportionally many requests.
func printTree(ctx context.Context, provider *tree.Provider, node *tree.Node, showAssets bool, depth, maxDepth int) error {
	if maxDepth > 0 && depth > maxDepth {
		return nil
	}

	children, err := provider.Children(ctx, node)
	if err != nil {
		return err
	}

	indent := strings.Repeat("  ", depth)
	for i := range children {
		child := children[i]
		if child.Kind == tree.KindAsset {
			if showAssets {
				fmt.Printf("%s%s\n", indent, child.Label())
			}
			continue
		}
		fmt.Printf("%s%s/\n", indent, child.Label())
		if err := printTree(ctx, provider, &child, showAssets, depth+1, maxDepth); err != nil {
			return err
		}
	}
	return nil
}
