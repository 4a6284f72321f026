// Package social defines the entities the social graph is built from.
//
// A query result is a [UserWithRepos]: a GitHub [User] together with the
// [Repo] values they starred. Each repository embeds its [Owner] so a host
// can ask for the owner's profile later without an extra lookup.
//
// The JSON shape matches the GitHub GraphQL response the host fetches:
//
//	{
//	  "id": "U1", "login": "alice", "avatarUrl": "https://...",
//	  "starredRepositories": {
//	    "nodes": [
//	      {"id": "R1", "name": "proj",
//	       "owner": {"id": "U2", "login": "bob", "isInOrganization": false}}
//	    ]
//	  }
//	}
//
// [Kind] is the explicit variant tag used by graph nodes; nothing in the
// graph infers the variant from which optional fields happen to be set.
package social
