// Command lambda runs the Gemini proxy as a serverless function.
// It serves API Gateway proxy events, the shape Netlify functions and AWS Lambda both deliver.
package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	geminiproxy "github.com/maximhq/geminiproxy"
	"github.com/maximhq/geminiproxy/schemas"
	"github.com/maximhq/geminiproxy/transports/lib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	config, err := lib.LoadConfig(lib.NewViper(), "")
	if err != nil {
		geminiproxy.NewDefaultLogger(schemas.LogLevelInfo).Fatal("failed to load config: %v", err)
	}

	logger := lib.NewLogger(config)

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Debug)); err != nil {
		logger.Warn("failed to set GOMAXPROCS: %v", err)
	}

	proxy, err := lib.NewProxy(config, logger, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("failed to initialize proxy: %v", err)
	}

	// lambda.Start never returns; plugins are flushed when the runtime sends SIGTERM.
	lambda.StartWithOptions(NewHandler(proxy, logger).HandleRequest, lambda.WithEnableSIGTERM(proxy.Cleanup))
}
