package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/expenseflow/infra/cloudrun"
	"github.com/GregMSThompson/expenseflow/infra/docker"
	"github.com/GregMSThompson/expenseflow/infra/firestore"
	"github.com/GregMSThompson/expenseflow/infra/identity"
	"github.com/GregMSThompson/expenseflow/infra/provider"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// firebase auth verifies the bearer tokens the api accepts
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// remote store for signed-in sessions
		db, err := firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		return cloudrun.SetupCloudRun(ctx, prov, ident, db, repo)
	})
}
