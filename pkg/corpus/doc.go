// Package corpus stores named collections of training text in SQLite and
// feeds them to markov models. Trained models are never stored; they are
// rebuilt from a corpus whenever they are needed.
package corpus
