// Package scheduler drives panel agents through a session until every agent
// has produced a payload, an agent asks for user input, or the round budget
// runs out. It is the only component that appends turns and transitions
// session status.
package scheduler
