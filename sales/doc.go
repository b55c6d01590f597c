// Package sales defines the two production pipelines of the intake system:
// a six-agent research pipeline that turns a raw lead submission into a call
// prep brief, and a four-agent proposal pipeline that turns discovery call
// notes into a complete project proposal.
//
// The pipelines are plain descriptors built on the pipeline package; this
// package contributes the agent instructions, the lead and client input
// formats, and the brief compiler that assembles agent output into a
// deliverable document.
package sales
