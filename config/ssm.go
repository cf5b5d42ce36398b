package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// LoadSSMParameters merges every parameter stored under path into cfg.
// A parameter named "/foundation/prod/jwt-secret" under "/foundation/prod"
// becomes the key JWT_SECRET. Values already present in cfg win, so a local
// environment variable can always override the parameter store.
func LoadSSMParameters(ctx context.Context, client ssm.GetParametersByPathAPIClient, cfg map[string]string, path string) (int, error) {
	if path == "" {
		return 0, nil
	}

	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return loaded, fmt.Errorf("failed to read SSM parameters under %s: %w", path, err)
		}

		for _, param := range page.Parameters {
			key := parameterKey(path, aws.ToString(param.Name))
			if key == "" {
				continue
			}
			if _, exists := cfg[key]; exists {
				log.Debug().Str("key", key).Msg("SSM parameter shadowed by environment")
				continue
			}
			cfg[key] = aws.ToString(param.Value)
			loaded++
		}
	}

	return loaded, nil
}

func parameterKey(path, name string) string {
	name = strings.TrimPrefix(name, strings.TrimSuffix(path, "/"))
	name = strings.Trim(name, "/")
	replacer := strings.NewReplacer("/", "_", "-", "_", ".", "_")
	return strings.ToUpper(replacer.Replace(name))
}
