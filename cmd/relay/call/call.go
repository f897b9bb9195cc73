package callcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/relay/cmd/relay/render"
	"github.com/papercomputeco/relay/cmd/relay/wiring"
	"github.com/papercomputeco/relay/pkg/shell"
)

type callCommander struct {
	opts   *wiring.Options
	method string
	data   string
	output string
}

func newCallCmd(opts *wiring.Options, method, use, short, long string, args cobra.PositionalArgs) (*cobra.Command, *callCommander) {
	cmder := &callCommander{opts: opts, method: method}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	return cmd, cmder
}

func NewGetCmd(opts *wiring.Options) *cobra.Command {
	cmd, _ := newCallCmd(opts, http.MethodGet, "get <endpoint>",
		"GET an endpoint of the upstream API",
		`Send a GET to <api_url><endpoint> and print the JSON response.

Examples:
  relay get /api/v1/nodes`,
		cobra.ExactArgs(1))
	return cmd
}

func NewPostCmd(opts *wiring.Options) *cobra.Command {
	cmd, cmder := newCallCmd(opts, http.MethodPost, "post <endpoint>",
		"POST a JSON body to the upstream API",
		`Send a POST with a JSON body and print the JSON response.
Without --data the body is {}.

Examples:
  relay post /api/v1/nodes --data '{"name":"a"}'`,
		cobra.ExactArgs(1))
	cmd.Flags().StringVarP(&cmder.data, "data", "d", "", "JSON request body")
	return cmd
}

func NewPutCmd(opts *wiring.Options) *cobra.Command {
	cmd, cmder := newCallCmd(opts, http.MethodPut, "put <endpoint>",
		"PUT a JSON body to the upstream API",
		`Send a PUT with a JSON body and print the JSON response.
Without --data the body is {}.

Examples:
  relay put /api/v1/nodes/1 --data '{"name":"b"}'`,
		cobra.ExactArgs(1))
	cmd.Flags().StringVarP(&cmder.data, "data", "d", "", "JSON request body")
	return cmd
}

func NewDeleteCmd(opts *wiring.Options) *cobra.Command {
	cmd, _ := newCallCmd(opts, http.MethodDelete, "delete <endpoint>",
		"DELETE an endpoint of the upstream API",
		`Send a DELETE to <api_url><endpoint> and print the JSON response.

Examples:
  relay delete /api/v1/nodes/1`,
		cobra.ExactArgs(1))
	return cmd
}

func NewDownloadCmd(opts *wiring.Options) *cobra.Command {
	cmd, cmder := newCallCmd(opts, "DOWNLOAD", "download <endpoint>",
		"Download raw bytes from the upstream API",
		`Send a GET and write the raw response body to a file or stdout.

Examples:
  relay download /api/v1/export -o export.tar`,
		cobra.ExactArgs(1))
	cmd.Flags().StringVarP(&cmder.output, "output", "o", "", "File to write (default: stdout)")
	return cmd
}

func NewUploadCmd(opts *wiring.Options) *cobra.Command {
	cmd, _ := newCallCmd(opts, "UPLOAD", "upload <endpoint> <file>",
		"Upload a local file to the upstream API",
		`Read <file> and POST it as multipart field "file", then print the
JSON response.

Examples:
  relay upload /api/v1/files ./report.pdf`,
		cobra.ExactArgs(2))
	return cmd
}

func (c *callCommander) run(ctx context.Context, cmd *cobra.Command, args []string) error {
	rt, err := wiring.Build(*c.opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	endpoint := args[0]
	out := cmd.OutOrStdout()

	if c.method == "DOWNLOAD" {
		return c.download(ctx, cmd, rt.Commands, endpoint)
	}

	var result any
	switch c.method {
	case http.MethodGet:
		result, err = rt.Commands.APIGet(ctx, endpoint)
	case http.MethodDelete:
		result, err = rt.Commands.APIDelete(ctx, endpoint)
	case http.MethodPost, http.MethodPut:
		body, perr := c.body()
		if perr != nil {
			return perr
		}
		if c.method == http.MethodPost {
			result, err = rt.Commands.APIPost(ctx, endpoint, body)
		} else {
			result, err = rt.Commands.APIPut(ctx, endpoint, body)
		}
	case "UPLOAD":
		result, err = rt.Commands.APIUpload(ctx, endpoint, args[1])
	}
	if err != nil {
		return err
	}

	return render.JSON(out, result)
}

func (c *callCommander) body() (any, error) {
	if c.data == "" {
		return nil, nil
	}

	var body any
	if err := json.Unmarshal([]byte(c.data), &body); err != nil {
		return nil, fmt.Errorf("--data is not valid JSON: %w", err)
	}
	return body, nil
}

func (c *callCommander) download(ctx context.Context, cmd *cobra.Command, commands *shell.Commands, endpoint string) error {
	data, err := commands.APIDownload(ctx, endpoint)
	if err != nil {
		return err
	}

	if c.output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(c.output, data, 0o644); err != nil {
		return fmt.Errorf("could not write %s: %w", c.output, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", len(data), c.output)
	return nil
}
