// Package file keeps jdrag's settings and prompt templates under ~/.jdrag
// (or $JDRAG_HOME): config.toml through ConfigStore, and prompts/*.txt
// through PromptStore.
package file
