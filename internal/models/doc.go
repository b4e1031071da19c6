// Package models defines the domain entities shared by the lookup services, the web relay and the CLI.
//
// The package contains two categories of types:
//
// 1. Values that live for one lookup:
//   - [Credentials] : the client ID and secret a user supplies
//   - [BearerToken] : an access token derived from credentials, discarded after one action
//   - [EntityReference] : the first catalog entity matching a search
//
// 2. Persistent entities, which implement [Model]:
//   - [Session] : a browser session holding one set of credentials
//
// The [Repository] interface defines the CRUD operations a store for a [Model] provides.
package models
