// Package assistant reconciles what the user says with what is in the
// calendar.
//
// One call to Assistant.Turn runs a full cycle: the user text is logged, the
// model is asked for an action record with the upcoming events and today's
// date in its instructions, the record is normalized, and the Dispatcher
// carries it out. Update and delete requests are first resolved to a concrete
// event by the Resolver; deletes additionally need an affirmative answer from
// a Confirmer. The assistant's reply is always appended to the transcript,
// whether or not the calendar part succeeded.
//
// Resolution is deliberately simple. Delete searches by the summary in the new
// record; update searches by the summary of the last created or updated event,
// because "move it to 2pm" refers to that event. When several events match,
// the earliest one wins. There is no disambiguation step.
//
// Turns are sequential. Concurrent callers of Turn are serialized.
package assistant
