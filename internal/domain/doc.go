// Package domain contains the core business entities, value objects, and
// domain logic of the application: users, projects, tags and tasks, the patch
// types used for partial updates, the task query model, and the error taxonomy
// shared by every layer. It is independent of any storage or delivery mechanism.
package domain
