package engine_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/stackforge/pkg/engine"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/resolver"
	"github.com/matzehuels/stackforge/pkg/target"
)

func Example() {
	eng, err := engine.Default()
	if err != nil {
		panic(err)
	}

	in := resolver.Input{Language: target.Java, Framework: target.SpringBoot, State: eng.NewState()}
	res, _ := eng.Resolve(context.Background(), in, resolver.Enable{Feature: feature.TwoFactorAuth})
	for _, c := range res.Changes {
		fmt.Println(c)
	}

	res, _ = eng.Resolve(context.Background(), res.Input(), resolver.Disable{Feature: feature.MailService})
	for _, c := range res.Changes {
		fmt.Println(c)
	}
	fmt.Println(res.Summary())
	// Output:
	// enabled jwtAuth (required by twoFactorAuth)
	// enabled mailService (required by twoFactorAuth)
	// disabled twoFactorAuth (requires mailService)
	// 1 feature was disabled
}

func Example_rejection() {
	eng, err := engine.Default()
	if err != nil {
		panic(err)
	}

	in := resolver.Input{Language: target.Rust, Framework: target.Axum, State: eng.NewState()}
	res, _ := eng.Resolve(context.Background(), in, resolver.Enable{Feature: feature.EventSourcing})
	fmt.Println(res.Rejection)
	fmt.Println(eng.Explain(target.Rust, target.Axum, feature.DomainEvents))
	// Output:
	// cannot enable eventSourcing: unsupported domainEvents
	// not available with Axum
}
