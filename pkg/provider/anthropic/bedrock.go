package anthropic

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// bedrockEndpoint is the runtime base URL of a Bedrock region.
func bedrockEndpoint(region string) string {
	if region == "" {
		region = "us-east-1"
	}

	return fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com/", region)
}

// bearerMiddleware rewrites Messages API requests into Bedrock invoke calls
// authenticated with a Bedrock API key.
func bearerMiddleware(token string) option.Middleware {
	return func(r *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		if r.Body != nil {
			body, err := io.ReadAll(r.Body)

			if err != nil {
				return nil, err
			}

			r.Body.Close()

			if !gjson.GetBytes(body, "anthropic_version").Exists() {
				body, _ = sjson.SetBytes(body, "anthropic_version", bedrock.DefaultVersion)
			}

			if r.Method == http.MethodPost && bedrock.DefaultEndpoints[r.URL.Path] {
				model := gjson.GetBytes(body, "model").String()

				body, _ = sjson.DeleteBytes(body, "model")
				body, _ = sjson.DeleteBytes(body, "stream")

				r.URL.Path = fmt.Sprintf("/model/%s/invoke", model)
				r.URL.RawPath = fmt.Sprintf("/model/%s/invoke", url.PathEscape(model))
			}

			reader := bytes.NewReader(body)

			r.Body = io.NopCloser(reader)
			r.ContentLength = int64(len(body))

			r.GetBody = func() (io.ReadCloser, error) {
				_, err := reader.Seek(0, io.SeekStart)
				return io.NopCloser(reader), err
			}
		}

		r.Header.Set("Authorization", "Bearer "+token)

		return next(r)
	}
}
