/*
Package catalog keeps named schemas and validates inputs against them.

A Catalog is filled from code with Register, from a single definition with
RegisterDefinition, or from a whole ports.DefinitionStore with Sync. Every
validation fires the OnValidate hook, which is how metrics are collected:

	cat := catalog.New(catalog.WithHooks(metrics.Hooks()))
	if _, err := cat.Sync(ctx, store); err != nil {
		return err
	}
	res, err := cat.Validate(ctx, "user", input)
*/
package catalog
