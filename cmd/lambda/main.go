package main

import (
	"referral_proxy/internal/lambdaproxy"
	"referral_proxy/internal/server"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	lambda.Start(lambdaproxy.New(server.ServerlessHandler()).Proxy)
}
