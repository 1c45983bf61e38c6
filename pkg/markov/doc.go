/*
Package markov provides a small, in-memory, character-level Markov chain model
for learning the texture of a text corpus and generating new text from it.

A Model maps every window of a fixed number of characters seen during training
to a Distribution of the characters that followed it. Generation starts from a
seed text and repeatedly samples the next character from the distribution of
the current window, so seeding the model with the same value always produces
the same output for the same training data.

	m, _ := markov.NewModel(4, markov.WithSeed(42))
	m.TrainString(corpus)
	fmt.Println(m.Generate("The ", 200))

Models are not safe for concurrent use; a single owner trains and then
generates.
*/
package markov
