// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jeranaias/streamchat/internal/ollama"
	"github.com/jeranaias/streamchat/internal/ui/styles"
	"github.com/jeranaias/streamchat/internal/util"
)

// =============================================================================
// MODELS COMMAND
// =============================================================================

// RunModels implements "streamchat models": list what the service has
// installed.
func RunModels(ctx context.Context, out io.Writer, client *ollama.Client) error {
	models, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("%s", ollama.FriendlyMessage(err))
	}
	if len(models) == 0 {
		fmt.Fprintln(out, styles.RenderInfo("no models installed - try: ollama pull llama3.3"))
		return nil
	}

	for _, m := range models {
		fmt.Fprintf(out, "%s %s\n",
			util.PadWidth(m.Name, 40),
			styles.MutedText.Render(formatSize(m.Size)))
	}
	return nil
}

func formatSize(bytes int64) string {
	const gb = 1 << 30
	const mb = 1 << 20
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.0f MB", float64(bytes)/mb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
